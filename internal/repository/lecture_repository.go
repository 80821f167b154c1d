package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// LectureRepository reads scheduled lectures.
type LectureRepository struct {
	db *sqlx.DB
}

// NewLectureRepository constructs the repository.
func NewLectureRepository(db *sqlx.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

// ListScheduledBetween returns lectures with scheduled_at in [from, to).
func (r *LectureRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Lecture, error) {
	const query = `SELECT id, batch_id, title, scheduled_at FROM lectures
WHERE scheduled_at >= $1 AND scheduled_at < $2 ORDER BY scheduled_at`
	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, from, to); err != nil {
		return nil, fmt.Errorf("list upcoming lectures: %w", err)
	}
	return lectures, nil
}

// FindByID returns a lecture or sql.ErrNoRows.
func (r *LectureRepository) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	const query = `SELECT id, batch_id, title, scheduled_at FROM lectures WHERE id = $1`
	var lecture models.Lecture
	if err := r.db.GetContext(ctx, &lecture, query, id); err != nil {
		return nil, err
	}
	return &lecture, nil
}
