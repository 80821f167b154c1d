package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const insertNotification = `INSERT INTO notifications (id, user_id, title, body, link, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Create inserts a single notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	prepareNotification(n, time.Now().UTC())
	if _, err := r.db.ExecContext(ctx, insertNotification, n.ID, n.UserID, n.Title, n.Body, n.Link, n.CreatedAt); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// BulkCreate inserts all notifications in one transaction. Either every row is
// written or none is.
func (r *NotificationRepository) BulkCreate(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk notifications: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range notifications {
		n := &notifications[i]
		prepareNotification(n, now)
		if _, err := tx.ExecContext(ctx, insertNotification, n.ID, n.UserID, n.Title, n.Body, n.Link, n.CreatedAt); err != nil {
			return fmt.Errorf("bulk insert notification: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk notifications: %w", err)
	}
	commit = true
	return nil
}

// ListRecent returns the newest notifications of a user.
func (r *NotificationRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT id, user_id, title, body, link, read_at, created_at
FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread returns how many notifications the user has not read.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead stamps read_at on every unread notification of the user.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	const query = `UPDATE notifications SET read_at = $1 WHERE user_id = $2 AND read_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at, userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notifications read rows: %w", err)
	}
	return affected, nil
}

func prepareNotification(n *models.Notification, now time.Time) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
}
