package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 10

// Error is an application error carrying a code for the response envelope.
type Error struct {
	Code    ErrorCode
	Message string                 // overrides Code.Message() when set
	Details map[string]interface{} // copied into the response details
	Err     error                  // wrapped cause
	Stack   string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// build backs every constructor. A fresh stack starts at the caller of the
// exported constructor.
func build(code ErrorCode, message string, cause error, stack string) *Error {
	if stack == "" {
		stack = captureStack(3)
	}
	return &Error{Code: code, Message: message, Err: cause, Stack: stack}
}

func New(code ErrorCode) *Error {
	return build(code, code.Message(), nil, "")
}

func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return build(code, fmt.Sprintf(format, args...), nil, "")
}

// Wrap attaches code to err and keeps err's message. Wrapping an *Error keeps
// its details and stack without changing it.
func Wrap(err error, code ErrorCode) *Error {
	if err == nil {
		return nil
	}
	var inner *Error
	if stderrors.As(err, &inner) {
		wrapped := build(code, inner.Error(), err, inner.Stack)
		for k, v := range inner.Details {
			wrapped.WithDetail(k, v)
		}
		return wrapped
	}
	return build(code, err.Error(), err, "")
}

// Wrapf attaches code and a new message to err.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return build(code, fmt.Sprintf(format, args...), err, "")
}

func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// GetError finds the first *Error in err's chain, wrapping foreign errors as
// InternalServerError.
func GetError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return Wrap(err, InternalServerError)
}

// GetCode returns Success for nil and InternalServerError for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return Success
	}
	return GetError(err).Code
}

// Is reports whether err's chain carries an *Error with code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == code
}

func captureStack(skip int) string {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for n > 0 {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&b, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return b.String()
}

func BadRequest(msg string) *Error {
	return New(InvalidParams).WithMessage(msg)
}

// UpstreamError reports a non-success status from the judge.
func UpstreamError(statusCode int, format string, args ...interface{}) *Error {
	return Newf(JudgeRequestFailed, format, args...).WithDetail("status_code", statusCode)
}

func ValidationError(field, reason string) *Error {
	return New(ValidationFailed).WithDetail("field", field).WithDetail("reason", reason)
}
