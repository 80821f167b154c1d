package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-api/internal/models"
)

// CourseRepository reads the public course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, title, slug, description, price_inr, is_active`

// ListActive returns active courses ordered by title.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE is_active = TRUE ORDER BY title`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindActiveBySlug returns an active course or sql.ErrNoRows.
func (r *CourseRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1 AND is_active = TRUE`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, slug); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListActiveBatches returns the active batches of the given courses.
func (r *CourseRepository) ListActiveBatches(ctx context.Context, courseIDs []string) ([]models.Batch, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, course_id, name, start_date, end_date, platform, is_active
FROM batches WHERE course_id = ANY($1) AND is_active = TRUE ORDER BY start_date`
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}
