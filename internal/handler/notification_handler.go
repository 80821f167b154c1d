package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

const defaultStreamKeepAlive = 25 * time.Second

// NotificationFeedService serves the notification bell.
type NotificationFeedService interface {
	List(ctx context.Context, userID string) (*dto.NotificationFeed, error)
	MarkAllRead(ctx context.Context, userID string) (*dto.MarkReadResponse, error)
	Subscribe(userID string) (<-chan models.Notification, func())
}

// NotificationHandler exposes notification endpoints.
type NotificationHandler struct {
	service   NotificationFeedService
	keepAlive time.Duration
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(svc NotificationFeedService) *NotificationHandler {
	return &NotificationHandler{service: svc, keepAlive: defaultStreamKeepAlive}
}

// List godoc
// @Summary Latest notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	feed, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed, nil)
}

// MarkRead godoc
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/v1/notifications/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	res, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Stream godoc
// @Summary Realtime notification stream
// @Description Server-sent events. Each new notification is sent as a "notification" event; "ping" events keep the connection open.
// @Tags Notifications
// @Produce text/event-stream
// @Security BearerAuth
// @Router /api/v1/notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	events, cancel := h.service.Subscribe(userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n, open := <-events:
			if !open {
				return
			}
			c.SSEvent("notification", n)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		}
	}
}
