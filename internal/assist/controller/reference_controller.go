package controller

import (
	"lcbridge/internal/assist/service"
	"lcbridge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// ReferenceController handles the references endpoint.
type ReferenceController struct {
	referenceService *service.ReferenceService
}

// NewReferenceController creates a new ReferenceController.
func NewReferenceController(referenceService *service.ReferenceService) *ReferenceController {
	return &ReferenceController{referenceService: referenceService}
}

// Get handles GET /api/references?slug=&lang=.
func (h *ReferenceController) Get(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		response.BadRequest(c, "slug is required")
		return
	}

	refs, err := h.referenceService.Build(c.Request.Context(), slug, c.Query("lang"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, refs)
}
