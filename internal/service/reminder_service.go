package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

const (
	reminderTitle = "Class Starting Soon!"
	reminderLink  = "/dashboard/student"
)

// Sweep outcome messages returned to the scheduler.
const (
	MsgNoUpcomingLectures = "No upcoming lectures to notify."
	MsgNoEnrolledStudents = "Lectures found, but no students enrolled."
	msgSweepFailed        = "reminder sweep failed"
)

type lectureReader interface {
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Lecture, error)
}

type activeEnrollmentReader interface {
	ListActiveByBatches(ctx context.Context, batchIDs []string) ([]models.EnrollmentRecipient, error)
}

type notificationBulkWriter interface {
	BulkCreate(ctx context.Context, notifications []models.Notification) error
}

type notificationBulkPublisher interface {
	PublishAll(notifications []models.Notification)
}

// ReminderConfig tunes the reminder window.
type ReminderConfig struct {
	Secret   string
	LeadTime time.Duration
	Window   time.Duration
}

// ReminderService notifies enrolled students of lectures starting soon.
type ReminderService struct {
	lectures      lectureReader
	enrollments   activeEnrollmentReader
	notifications notificationBulkWriter
	publisher     notificationBulkPublisher
	metrics       *MetricsService
	logger        *zap.Logger
	config        ReminderConfig
	now           func() time.Time
}

// NewReminderService constructs ReminderService.
func NewReminderService(lectures lectureReader, enrollments activeEnrollmentReader, notifications notificationBulkWriter, publisher notificationBulkPublisher, metrics *MetricsService, logger *zap.Logger, cfg ReminderConfig) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LeadTime <= 0 {
		cfg.LeadTime = 30 * time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	return &ReminderService{
		lectures:      lectures,
		enrollments:   enrollments,
		notifications: notifications,
		publisher:     publisher,
		metrics:       metrics,
		logger:        logger,
		config:        cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Authorize checks the caller's shared secret in constant time. An unset
// secret rejects every caller.
func (s *ReminderService) Authorize(secret string) error {
	if s.config.Secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.config.Secret)) != 1 {
		return appErrors.Clone(appErrors.ErrUnauthorized, "Unauthorized")
	}
	return nil
}

// Sweep finds lectures starting in [now+lead, now+lead+window) and writes one
// notification per enrolled student and lecture. The message describes the
// result in the form returned to the scheduler.
func (s *ReminderService) Sweep(ctx context.Context) (string, *dto.SweepResult, error) {
	from := s.now().Add(s.config.LeadTime)
	to := from.Add(s.config.Window)

	lectures, err := s.lectures.ListScheduledBetween(ctx, from, to)
	if err != nil {
		s.metrics.RecordSweep("failed")
		s.logger.Error("upcoming lectures not loaded", zap.Time("from", from), zap.Time("to", to), zap.Error(err))
		return "", nil, sweepFailure(err)
	}
	result := &dto.SweepResult{Lectures: len(lectures)}
	if len(lectures) == 0 {
		s.metrics.RecordSweep("no_lectures")
		return MsgNoUpcomingLectures, result, nil
	}

	byBatch := make(map[string][]models.Lecture)
	batchIDs := make([]string, 0, len(lectures))
	for _, lecture := range lectures {
		if _, seen := byBatch[lecture.BatchID]; !seen {
			batchIDs = append(batchIDs, lecture.BatchID)
		}
		byBatch[lecture.BatchID] = append(byBatch[lecture.BatchID], lecture)
	}

	recipients, err := s.enrollments.ListActiveByBatches(ctx, batchIDs)
	if err != nil {
		s.metrics.RecordSweep("failed")
		s.logger.Error("reminder recipients not loaded", zap.Strings("batch_ids", batchIDs), zap.Error(err))
		return "", nil, sweepFailure(err)
	}
	result.Enrollments = len(recipients)
	if len(recipients) == 0 {
		s.metrics.RecordSweep("no_enrollments")
		return MsgNoEnrolledStudents, result, nil
	}

	notifications := make([]models.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		for _, lecture := range byBatch[recipient.BatchID] {
			notifications = append(notifications, models.Notification{
				UserID: recipient.UserID,
				Title:  reminderTitle,
				Body:   fmt.Sprintf("Your class \"%s\" is scheduled to start in about %d minutes.", lecture.Title, int(s.config.LeadTime.Minutes())),
				Link:   reminderLink,
			})
		}
	}

	if err := s.notifications.BulkCreate(ctx, notifications); err != nil {
		s.metrics.RecordSweep("failed")
		s.logger.Error("reminder notifications not written", zap.Int("count", len(notifications)), zap.Error(err))
		return "", nil, sweepFailure(err)
	}
	result.Notifications = len(notifications)
	s.metrics.RecordSweep("sent")
	s.metrics.RecordNotifications("reminder", len(notifications))
	if s.publisher != nil {
		s.publisher.PublishAll(notifications)
	}

	s.logger.Info("lecture reminders sent",
		zap.Int("lectures", result.Lectures),
		zap.Int("enrollments", result.Enrollments),
		zap.Int("notifications", result.Notifications),
	)
	return fmt.Sprintf("Successfully sent %d notifications.", len(notifications)), result, nil
}

// sweepFailure keeps driver text out of the response body; the cause stays
// on the error for logs and errors.Is.
func sweepFailure(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msgSweepFailed)
}
