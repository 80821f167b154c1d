package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment links a user to a batch. There is at most one row per (user, batch).
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	UserID     string           `db:"user_id" json:"user_id"`
	BatchID    string           `db:"batch_id" json:"batch_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt *time.Time       `db:"enrolled_at" json:"enrolled_at,omitempty"`
}

// EnrollmentDetail enriches Enrollment with batch and course info for dashboards.
type EnrollmentDetail struct {
	Enrollment
	BatchName   string     `db:"batch_name" json:"batch_name"`
	Platform    string     `db:"platform" json:"platform"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	CourseTitle string     `db:"course_title" json:"course_title"`
	CourseSlug  string     `db:"course_slug" json:"course_slug"`
}

// EnrollmentRecipient is the minimal projection used to fan out notifications.
type EnrollmentRecipient struct {
	UserID  string `db:"user_id"`
	BatchID string `db:"batch_id"`
}
