package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course is a catalog entry.
type Course struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Slug        string          `db:"slug" json:"slug"`
	Description *string         `db:"description" json:"description,omitempty"`
	PriceINR    decimal.Decimal `db:"price_inr" json:"price_inr"`
	IsActive    bool            `db:"is_active" json:"is_active"`
}

// Batch is a scheduled cohort of a course.
type Batch struct {
	ID        string     `db:"id" json:"id"`
	CourseID  string     `db:"course_id" json:"course_id"`
	Name      string     `db:"name" json:"name"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	Platform  string     `db:"platform" json:"platform"`
	IsActive  bool       `db:"is_active" json:"is_active"`
}

// CourseWithBatches is the catalog view of a course and its open batches.
type CourseWithBatches struct {
	Course
	Batches []Batch `json:"batches"`
}
