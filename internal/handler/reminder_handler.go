package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/pkg/response"
)

// ReminderSweeper runs the lecture reminder sweep.
type ReminderSweeper interface {
	Authorize(secret string) error
	Sweep(ctx context.Context) (string, *dto.SweepResult, error)
}

// ReminderHandler exposes the scheduler entry point.
type ReminderHandler struct {
	service ReminderSweeper
}

// NewReminderHandler constructs ReminderHandler.
func NewReminderHandler(svc ReminderSweeper) *ReminderHandler {
	return &ReminderHandler{service: svc}
}

// NotifyUpcoming godoc
// @Summary Notify students of lectures starting soon
// @Description Invoked by an external scheduler. Writes one notification per enrolled student for every lecture starting in 30 to 35 minutes.
// @Tags Cron
// @Produce json
// @Param secret query string true "Shared scheduler secret"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/cron/notify-upcoming [get]
func (h *ReminderHandler) NotifyUpcoming(c *gin.Context) {
	if err := h.service.Authorize(c.Query("secret")); err != nil {
		response.ErrorMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	message, _, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		flatError(c, err)
		return
	}
	response.Message(c, http.StatusOK, message)
}
