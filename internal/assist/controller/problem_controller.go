package controller

import (
	"strconv"

	"lcbridge/internal/assist/service"
	"lcbridge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// ProblemController handles daily challenge and submission history endpoints.
type ProblemController struct {
	problemService *service.ProblemService
}

// NewProblemController creates a new ProblemController.
func NewProblemController(problemService *service.ProblemService) *ProblemController {
	return &ProblemController{problemService: problemService}
}

// DailyChallenge handles GET /api/potd.
func (h *ProblemController) DailyChallenge(c *gin.Context) {
	potd, err := h.problemService.DailyChallenge(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, potd)
}

// Submissions handles GET /api/leetcode/submissions.
func (h *ProblemController) Submissions(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		response.BadRequest(c, "slug is required")
		return
	}

	limit := service.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > service.MaxHistoryLimit {
			response.BadRequest(c, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	history, err := h.problemService.Submissions(c.Request.Context(), slug, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, history)
}
