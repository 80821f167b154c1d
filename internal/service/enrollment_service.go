package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type enrollmentReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error)
}

// EnrollmentService serves the student dashboard.
type EnrollmentService struct {
	repo   enrollmentReader
	logger *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentReader, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, logger: logger}
}

// ListMine returns the caller's enrollments in every status, so a PENDING row
// surfaces as "not yet active" rather than disappearing.
func (s *EnrollmentService) ListMine(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrollmentDetail{}
	}
	return enrollments, nil
}
