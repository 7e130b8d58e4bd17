// Package contextkey holds the context keys shared by the HTTP middleware and
// the logger.
package contextkey

import "context"

// Key names a request-scoped value.
type Key string

const (
	TraceID   Key = "trace_id"
	RequestID Key = "request_id"
)

// String returns the value stored under k, or "" when absent.
func (k Key) String(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(k).(string)
	return v
}
