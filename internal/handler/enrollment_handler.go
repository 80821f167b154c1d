package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

// EnrollmentLister lists a user's enrollments.
type EnrollmentLister interface {
	ListMine(ctx context.Context, userID string) ([]models.EnrollmentDetail, error)
}

// EnrollmentHandler exposes the student dashboard endpoints.
type EnrollmentHandler struct {
	enrollments EnrollmentLister
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments EnrollmentLister) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// ListMine godoc
// @Summary Caller's enrollments
// @Description Includes PENDING enrollments so the dashboard can show that payment is still being confirmed.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/v1/me/enrollments [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollments.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}
