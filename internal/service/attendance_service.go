package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type attendanceRepository interface {
	BulkUpsert(ctx context.Context, records []models.Attendance) error
	Roster(ctx context.Context, lectureID, batchID string) ([]models.AttendanceRosterEntry, error)
	ListByUser(ctx context.Context, userID string) ([]models.AttendanceHistoryRow, error)
}

type lectureFinder interface {
	FindByID(ctx context.Context, id string) (*models.Lecture, error)
}

// AttendanceService coordinates lecture attendance workflows.
type AttendanceService struct {
	repo      attendanceRepository
	lectures  lectureFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, lectures lectureFinder, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, lectures: lectures, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// Roster returns the lecture with its actively enrolled students and marks.
func (s *AttendanceService) Roster(ctx context.Context, lectureID string) (*dto.AttendanceRoster, error) {
	lecture, err := s.findLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.Roster(ctx, lecture.ID, lecture.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance roster")
	}
	if students == nil {
		students = []models.AttendanceRosterEntry{}
	}
	return &dto.AttendanceRoster{Lecture: *lecture, Students: students}, nil
}

// Mark records the marks for a lecture in one transaction. Later marks for the
// same student overwrite earlier ones.
func (s *AttendanceService) Mark(ctx context.Context, lectureID, markedBy string, req dto.MarkAttendanceRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	lecture, err := s.findLecture(ctx, lectureID)
	if err != nil {
		return 0, err
	}

	byUser := make(map[string]int, len(req.Marks))
	records := make([]models.Attendance, 0, len(req.Marks))
	for _, mark := range req.Marks {
		record := models.Attendance{
			LectureID: lecture.ID,
			UserID:    strings.TrimSpace(mark.UserID),
			Status:    models.AttendanceStatus(strings.ToUpper(string(mark.Status))),
			MarkedBy:  markedBy,
		}
		if idx, ok := byUser[record.UserID]; ok {
			records[idx] = record
			continue
		}
		byUser[record.UserID] = len(records)
		records = append(records, record)
	}

	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	s.logger.Info("attendance marked", zap.String("lecture_id", lecture.ID), zap.String("marked_by", markedBy), zap.Int("count", len(records)))
	return len(records), nil
}

// History returns the caller's attendance history.
func (s *AttendanceService) History(ctx context.Context, userID string) ([]models.AttendanceHistoryRow, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	if rows == nil {
		rows = []models.AttendanceHistoryRow{}
	}
	return rows, nil
}

func (s *AttendanceService) findLecture(ctx context.Context, lectureID string) (*models.Lecture, error) {
	lecture, err := s.lectures.FindByID(ctx, lectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecture")
	}
	return lecture, nil
}
