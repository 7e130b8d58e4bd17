package controller

import (
	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/service"
	"lcbridge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// SessionController handles the LeetCode session override endpoints.
type SessionController struct {
	sessionService *service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// Get reports whether an override is stored.
func (h *SessionController) Get(c *gin.Context) {
	status, err := h.sessionService.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

// Set stores both cookies.
func (h *SessionController) Set(c *gin.Context) {
	var req model.Credential
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	if err := h.sessionService.Set(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, StatusResponse{Status: "ok"})
}

// Clear drops the override.
func (h *SessionController) Clear(c *gin.Context) {
	if err := h.sessionService.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, StatusResponse{Status: "ok"})
}

// StatusResponse is the body of endpoints with nothing else to report.
type StatusResponse struct {
	Status string `json:"status"`
}
