// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"
	"strconv"

	"lcbridge/pkg/errors"
	"lcbridge/pkg/utils/contextkey"
	"lcbridge/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope. Code is errors.Success on success.
type Response struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Data    interface{}      `json:"data,omitempty"`
	Details interface{}      `json:"details,omitempty"`
	TraceID string           `json:"trace_id,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.Success,
		Message: errors.Success.Message(),
		Data:    data,
		TraceID: traceID(c),
	})
}

// Error writes err with the status its code maps to. 5xx errors are logged
// with their stack, the rest at warn.
func Error(c *gin.Context, err error) {
	appErr := errors.GetError(err)
	status := appErr.Code.HTTPStatus()
	ctx := c.Request.Context()

	fields := []zap.Field{
		zap.Int("code", int(appErr.Code)),
		zap.String("message", appErr.Error()),
		zap.String("path", c.FullPath()),
	}
	if len(appErr.Details) > 0 {
		fields = append(fields, zap.Any("details", appErr.Details))
	}
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", append(fields, zap.String("stack", appErr.Stack))...)
	} else {
		logger.Warn(ctx, "request rejected", fields...)
	}

	if status == http.StatusTooManyRequests {
		if secs, ok := appErr.Details["retry_after_seconds"].(int); ok && secs > 0 {
			c.Header("Retry-After", strconv.Itoa(secs))
		}
	}

	resp := Response{Code: appErr.Code, Message: appErr.Error(), TraceID: traceID(c)}
	if len(appErr.Details) > 0 {
		resp.Details = appErr.Details
	}
	c.JSON(status, resp)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.BadRequest(message))
}

// AbortWithError writes err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func traceID(c *gin.Context) string {
	if id := contextkey.TraceID.String(c.Request.Context()); id != "" {
		return id
	}
	return c.GetString("trace_id")
}
