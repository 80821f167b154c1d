package models

import "time"

// Lecture is a scheduled session of a batch.
type Lecture struct {
	ID          string    `db:"id" json:"id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	Title       string    `db:"title" json:"title"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
}
