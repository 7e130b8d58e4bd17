package controller

import (
	"context"
	"time"

	appErr "lcbridge/pkg/errors"
	"lcbridge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness checks.
type HealthController struct {
	deps map[string]Pinger
}

// NewHealthController creates a HealthController. Nil dependencies are skipped.
func NewHealthController(deps map[string]Pinger) *HealthController {
	filtered := make(map[string]Pinger, len(deps))
	for name, dep := range deps {
		if dep != nil {
			filtered[name] = dep
		}
	}
	return &HealthController{deps: filtered}
}

// Health always reports ok while the process serves requests.
func (h *HealthController) Health(c *gin.Context) {
	response.Success(c, StatusResponse{Status: "ok"})
}

// Ready pings every configured dependency.
func (h *HealthController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			response.Error(c, appErr.Wrapf(err, appErr.ServiceUnavailable, "%s is not ready", name))
			return
		}
	}
	response.Success(c, StatusResponse{Status: "ok"})
}
