package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

// feedSize is the number of notifications shown in the bell.
const feedSize = 10

type notificationRepository interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

// NotificationService serves the notification bell.
type NotificationService struct {
	repo   notificationRepository
	hub    *NotificationHub
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService constructs NotificationService.
func NewNotificationService(repo notificationRepository, hub *NotificationHub, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, hub: hub, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the latest notifications and the unread count.
func (s *NotificationService) List(ctx context.Context, userID string) (*dto.NotificationFeed, error) {
	items, err := s.repo.ListRecent(ctx, userID, feedSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &dto.NotificationFeed{Items: items, UnreadCount: unread}, nil
}

// MarkAllRead marks the caller's unread notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*dto.MarkReadResponse, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	s.logger.Debug("notifications marked read", zap.String("user_id", userID), zap.Int64("count", updated))
	return &dto.MarkReadResponse{Updated: updated}, nil
}

// Subscribe opens a realtime stream for userID.
func (s *NotificationService) Subscribe(userID string) (<-chan models.Notification, func()) {
	return s.hub.Subscribe(userID)
}
