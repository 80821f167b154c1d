package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

const catalogCacheKey = "catalog:courses"

type courseRepository interface {
	ListActive(ctx context.Context) ([]models.Course, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Course, error)
	ListActiveBatches(ctx context.Context, courseIDs []string) ([]models.Batch, error)
}

// CatalogService serves the public course catalog.
type CatalogService struct {
	repo   courseRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewCatalogService constructs CatalogService. cache may be nil.
func NewCatalogService(repo courseRepository, cache *CacheService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

// ListCourses returns active courses with their active batches. The bool
// reports whether the result came from cache.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.CourseWithBatches, bool, error) {
	return Remember(ctx, s.cache, catalogCacheKey, 0, s.loadCatalog)
}

func (s *CatalogService) loadCatalog(ctx context.Context) ([]models.CourseWithBatches, error) {
	courses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	ids := make([]string, len(courses))
	for i, course := range courses {
		ids[i] = course.ID
	}
	batches, err := s.repo.ListActiveBatches(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	byCourse := make(map[string][]models.Batch, len(courses))
	for _, batch := range batches {
		byCourse[batch.CourseID] = append(byCourse[batch.CourseID], batch)
	}

	result := make([]models.CourseWithBatches, 0, len(courses))
	for _, course := range courses {
		items := byCourse[course.ID]
		if items == nil {
			items = []models.Batch{}
		}
		result = append(result, models.CourseWithBatches{Course: course, Batches: items})
	}
	s.logger.Debug("catalog loaded", zap.Int("courses", len(result)))
	return result, nil
}

// GetCourse returns an active course and its active batches.
func (s *CatalogService) GetCourse(ctx context.Context, slug string) (*models.CourseWithBatches, error) {
	course, err := s.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	batches, err := s.repo.ListActiveBatches(ctx, []string{course.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	return &models.CourseWithBatches{Course: *course, Batches: batches}, nil
}

// InvalidateCatalog drops the cached course list.
func (s *CatalogService) InvalidateCatalog(ctx context.Context) error {
	return s.cache.Invalidate(ctx, catalogCacheKey)
}
