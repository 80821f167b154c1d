package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

// CatalogReader serves the public catalog.
type CatalogReader interface {
	ListCourses(ctx context.Context) ([]models.CourseWithBatches, bool, error)
	GetCourse(ctx context.Context, slug string) (*models.CourseWithBatches, error)
}

// CatalogHandler exposes course catalog endpoints.
type CatalogHandler struct {
	service CatalogReader
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(svc CatalogReader) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// List godoc
// @Summary List active courses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/courses [get]
func (h *CatalogHandler) List(c *gin.Context) {
	courses, hit, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, courses, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Course detail
// @Tags Catalog
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/courses/{slug} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	course, err := h.service.GetCourse(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
