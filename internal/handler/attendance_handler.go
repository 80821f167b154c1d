package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// AttendanceUseCase covers the attendance workflows.
type AttendanceUseCase interface {
	Roster(ctx context.Context, lectureID string) (*dto.AttendanceRoster, error)
	Mark(ctx context.Context, lectureID, markedBy string, req dto.MarkAttendanceRequest) (int, error)
	History(ctx context.Context, userID string) ([]models.AttendanceHistoryRow, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service AttendanceUseCase
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(svc AttendanceUseCase) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Roster godoc
// @Summary Lecture attendance roster
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/admin/lectures/{id}/attendance [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	roster, err := h.service.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Mark godoc
// @Summary Mark lecture attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Param payload body dto.MarkAttendanceRequest true "Marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/admin/lectures/{id}/attendance [put]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	saved, err := h.service.Mark(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"saved": saved}, nil)
}

// MyHistory godoc
// @Summary Caller's attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/v1/me/attendance [get]
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	rows, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
