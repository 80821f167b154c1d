package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// AttendanceRepository persists lecture attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// BulkUpsert writes all marks in one transaction, overwriting previous marks
// for the same (lecture, user).
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance (id, lecture_id, user_id, status, marked_by, marked_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (lecture_id, user_id)
DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = EXCLUDED.marked_at`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.MarkedAt.IsZero() {
			rec.MarkedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.LectureID, rec.UserID, rec.Status, rec.MarkedBy, rec.MarkedAt); err != nil {
			return fmt.Errorf("upsert attendance for %s: %w", rec.UserID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	commit = true
	return nil
}

// Roster lists the students actively enrolled in the lecture's batch together
// with their current mark. Unmarked students default to ABSENT.
func (r *AttendanceRepository) Roster(ctx context.Context, lectureID, batchID string) ([]models.AttendanceRosterEntry, error) {
	const query = `SELECT e.user_id, COALESCE(p.full_name, '') AS full_name, COALESCE(a.status, $3) AS status
FROM enrollments e
LEFT JOIN profiles p ON p.id = e.user_id
LEFT JOIN attendance a ON a.user_id = e.user_id AND a.lecture_id = $1
WHERE e.batch_id = $2 AND e.status = $4
ORDER BY full_name`
	var roster []models.AttendanceRosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, lectureID, batchID, models.AttendanceStatusAbsent, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list attendance roster: %w", err)
	}
	return roster, nil
}

// ListByUser returns a student's marks for past lectures, newest first.
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID string) ([]models.AttendanceHistoryRow, error) {
	const query = `SELECT a.lecture_id, l.title AS lecture_title, l.scheduled_at, b.name AS batch_name, a.status
FROM attendance a
JOIN lectures l ON l.id = a.lecture_id
JOIN batches b ON b.id = l.batch_id
WHERE a.user_id = $1
ORDER BY l.scheduled_at DESC`
	var rows []models.AttendanceHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list attendance history: %w", err)
	}
	return rows, nil
}
