package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(err)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// The helpers below write the flat bodies expected by payment-provider and
// scheduler callers, which do not understand the envelope.

// Ack writes {"status":"ok"}.
func Ack(c *gin.Context) {
	noStore(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ErrorMessage writes {"error": message} with the given status.
func ErrorMessage(c *gin.Context, status int, message string) {
	noStore(c)
	c.JSON(status, gin.H{"error": message})
}

// Message writes {"message": message} with the given status.
func Message(c *gin.Context, status int, message string) {
	noStore(c)
	c.JSON(status, gin.H{"message": message})
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
