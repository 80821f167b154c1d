package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// UpsertPending returns the enrollment for (userID, batchID), creating a PENDING
// row when none exists. The conflict branch is a no-op update so RETURNING yields
// the existing row; the status of an existing row is left untouched.
func (r *EnrollmentRepository) UpsertPending(ctx context.Context, userID, batchID string) (*models.Enrollment, error) {
	const query = `INSERT INTO enrollments (id, user_id, batch_id, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, batch_id)
DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, batch_id, status, enrolled_at`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, uuid.NewString(), userID, batchID, models.EnrollmentStatusPending); err != nil {
		return nil, fmt.Errorf("upsert enrollment: %w", err)
	}
	return &enrollment, nil
}

// CreatePendingIfAbsent inserts a PENDING enrollment unless one already exists.
// It reports whether a row was created.
func (r *EnrollmentRepository) CreatePendingIfAbsent(ctx context.Context, userID, batchID string) (bool, error) {
	const query = `INSERT INTO enrollments (id, user_id, batch_id, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, batch_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, batchID, models.EnrollmentStatusPending)
	if err != nil {
		return false, fmt.Errorf("create pending enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create pending enrollment rows: %w", err)
	}
	return affected > 0, nil
}

// Activate marks the enrollment ACTIVE and stamps enrolled_at.
func (r *EnrollmentRepository) Activate(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE enrollments SET status = $1, enrolled_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, models.EnrollmentStatusActive, at, id)
	if err != nil {
		return fmt.Errorf("activate enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActiveByBatches returns the users actively enrolled in any of the batches.
func (r *EnrollmentRepository) ListActiveByBatches(ctx context.Context, batchIDs []string) ([]models.EnrollmentRecipient, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT user_id, batch_id FROM enrollments WHERE batch_id = ANY($1) AND status = $2`
	var recipients []models.EnrollmentRecipient
	if err := r.db.SelectContext(ctx, &recipients, query, pq.Array(batchIDs), models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return recipients, nil
}

// ListByUser returns every enrollment of a user with batch and course context.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.user_id, e.batch_id, e.status, e.enrolled_at,
        b.name AS batch_name, b.platform, b.start_date, c.title AS course_title, c.slug AS course_slug
        FROM enrollments e
        JOIN batches b ON b.id = e.batch_id
        JOIN courses c ON c.id = b.course_id
        WHERE e.user_id = $1
        ORDER BY b.start_date DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, userID); err != nil {
		return nil, fmt.Errorf("list enrollments by user: %w", err)
	}
	return enrollments, nil
}

// IsNotFound reports whether err signals a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
