package controller

import (
	"errors"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/service"
	"lcbridge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// SubmissionController handles code submission endpoints.
type SubmissionController struct {
	submissionService *service.SubmissionService
}

// NewSubmissionController creates a new SubmissionController.
func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// Submit runs one submission workflow. Aborted runs are still a 200 with
// ok=false so callers always receive the step log.
func (h *SubmissionController) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	outcome, err := h.submissionService.Submit(c.Request.Context(), req)
	if err != nil {
		var subErr *service.SubmissionError
		if errors.As(err, &subErr) {
			response.Success(c, subErr.Outcome())
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, outcome)
}
