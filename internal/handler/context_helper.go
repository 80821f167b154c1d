package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// currentUserID returns the authenticated user id, or "" for anonymous callers.
func currentUserID(c *gin.Context) string {
	return middleware.CurrentUser(c).UserID()
}

// requireUser writes 401 and returns false when the request is anonymous.
func requireUser(c *gin.Context) (string, bool) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

// flatError writes {"error": message} for callers that do not understand the
// envelope, keeping the status of the typed error.
func flatError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	response.ErrorMessage(c, appErr.Status, appErr.Message)
}
