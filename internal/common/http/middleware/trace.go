package middleware

import (
	"context"
	"strings"

	"lcbridge/pkg/utils/contextkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type correlationID struct {
	header string
	ginKey string
	ctxKey contextkey.Key
}

var correlationIDs = []correlationID{
	{header: "X-Trace-Id", ginKey: "trace_id", ctxKey: contextkey.TraceID},
	{header: "X-Request-Id", ginKey: "request_id", ctxKey: contextkey.RequestID},
}

// TraceContextMiddleware propagates trace and request ids. Ids sent by the
// caller are kept, missing ones are generated, and both are echoed back.
func TraceContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		for _, id := range correlationIDs {
			value := strings.TrimSpace(c.GetHeader(id.header))
			if value == "" {
				value = uuid.NewString()
			}
			c.Set(id.ginKey, value)
			c.Writer.Header().Set(id.header, value)
			ctx = context.WithValue(ctx, id.ctxKey, value)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
