package middleware

import (
	"time"

	"lcbridge/pkg/errors"
	"lcbridge/pkg/utils/logger"
	"lcbridge/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request with status and latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= 500 {
			logger.Warn(c.Request.Context(), "http request failed", fields...)
			return
		}
		logger.Info(c.Request.Context(), "http request", fields...)
	}
}

// Recovery converts a handler panic into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered", zap.Any("panic", rec))
				response.AbortWithError(c, errors.New(errors.InternalServerError))
			}
		}()
		c.Next()
	}
}
