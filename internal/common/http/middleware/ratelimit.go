package middleware

import (
	"context"
	"fmt"
	"time"

	"lcbridge/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// Limiter admits or rejects one hit against a counter key.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) error
}

// RateLimitPolicy caps hits per client IP and per route within a window.
type RateLimitPolicy struct {
	Window   time.Duration `yaml:"window"`
	IPMax    int           `yaml:"ipMax"`
	RouteMax int           `yaml:"routeMax"`
}

// RateLimitMiddleware enforces per-route rate limiting.
func RateLimitMiddleware(limiter Limiter, routeKey string, policy RateLimitPolicy, defaultWindow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		window := policy.Window
		if window == 0 {
			window = defaultWindow
		}

		if policy.IPMax > 0 {
			key := fmt.Sprintf("lcbridge:rate:ip:%s:%s", c.ClientIP(), routeKey)
			if err := limiter.Allow(c.Request.Context(), key, policy.IPMax, window); err != nil {
				response.AbortWithError(c, err)
				return
			}
		}

		if policy.RouteMax > 0 {
			key := fmt.Sprintf("lcbridge:rate:route:%s", routeKey)
			if err := limiter.Allow(c.Request.Context(), key, policy.RouteMax, window); err != nil {
				response.AbortWithError(c, err)
				return
			}
		}

		c.Next()
	}
}
