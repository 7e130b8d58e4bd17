package errors

import "net/http"

// ErrorCode identifies an error in API responses.
//
//	10000-10999 system and common
//	11000-11999 language resolution
//	12000-12999 judge session cookies
//	13000-13999 judge upstream
//	14000-14999 submission workflow
type ErrorCode int

const (
	Success ErrorCode = 10000

	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	CacheError ErrorCode = 10200

	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10303

	LanguageNotSupported ErrorCode = 11000

	SessionMissing  ErrorCode = 12000
	SessionRejected ErrorCode = 12001

	JudgeRequestFailed   ErrorCode = 13000
	JudgeInvalidResponse ErrorCode = 13001
	JudgeRateLimited     ErrorCode = 13002
	QuestionNotFound     ErrorCode = 13003
	SolutionInvalid      ErrorCode = 13004

	SubmissionFailed     ErrorCode = 14000
	SubmissionNotCreated ErrorCode = 14001
	SubmissionTimeout    ErrorCode = 14002
	SubmissionCanceled   ErrorCode = 14003
)

type codeInfo struct {
	message string
	status  int // 0 falls back to the range default
}

var codes = map[ErrorCode]codeInfo{
	Success:             {"Success", http.StatusOK},
	InternalServerError: {"Internal server error", 0},
	InvalidParams:       {"Invalid parameters", http.StatusBadRequest},
	NotFound:            {"Resource not found", http.StatusNotFound},
	TooManyRequests:     {"Too many requests, please try again later", http.StatusTooManyRequests},
	ServiceUnavailable:  {"Service temporarily unavailable", http.StatusServiceUnavailable},
	Timeout:             {"Request timeout", http.StatusGatewayTimeout},
	CacheError:          {"Cache operation failed", 0},
	ValidationFailed:    {"Validation failed", 0},
	RequiredFieldEmpty:  {"Required field is empty", 0},

	LanguageNotSupported: {"Programming language not supported", http.StatusBadRequest},

	SessionMissing:  {"LeetCode session cookies are not configured. Fetch them from the extension and try again.", http.StatusUnauthorized},
	SessionRejected: {"LeetCode rejected the stored session cookies", http.StatusForbidden},

	JudgeRequestFailed:   {"LeetCode request failed", 0},
	JudgeInvalidResponse: {"LeetCode returned an unexpected response", 0},
	JudgeRateLimited:     {"LeetCode rate-limited the request", http.StatusTooManyRequests},
	QuestionNotFound:     {"Question not found on LeetCode", http.StatusNotFound},
	SolutionInvalid:      {"Invalid solution returned by LeetCode", 0},

	SubmissionFailed:     {"Submission failed", 0},
	SubmissionNotCreated: {"LeetCode did not return a submission id.", 0},
	SubmissionTimeout:    {"Timed out while waiting for submission result.", http.StatusGatewayTimeout},
	SubmissionCanceled:   {"Submission polling was canceled.", 0},
}

// Message returns the default message for c.
func (c ErrorCode) Message() string {
	if info, ok := codes[c]; ok {
		return info.message
	}
	return "Unknown error"
}

// HTTPStatus maps c to a response status. Judge upstream codes default to
// 502, validation codes to 400, everything else to 500.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := codes[c]; ok && info.status != 0 {
		return info.status
	}
	switch {
	case c >= 13000 && c < 14000:
		return http.StatusBadGateway
	case c >= 10300 && c < 10400:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
