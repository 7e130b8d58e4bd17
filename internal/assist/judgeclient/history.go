package judgeclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"lcbridge/internal/assist/model"
	appErr "lcbridge/pkg/errors"
)

const maxErrorSnippet = 200

// FetchSubmissions lists the caller's recent submissions for slug.
func (c *Client) FetchSubmissions(ctx context.Context, slug string, limit int) (*model.SubmissionHistory, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("Question slug is required to fetch submissions.")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	headers, cred, err := c.headers(ctx, headerOptions{
		referer: c.problemURL(slug, "submissions/"),
		xhr:     true,
	})
	if err != nil {
		return nil, err
	}
	if cred.Session == "" {
		return nil, appErr.New(appErr.SessionMissing)
	}

	path := fmt.Sprintf("/api/submissions/%s/?offset=0&limit=%d", url.PathEscape(slug), limit)
	info, err := c.send(ctx, http.MethodGet, path, headers, nil)
	if err != nil {
		return nil, err
	}
	if !info.OK() {
		return nil, historyError(slug, info.StatusCode, info.Body)
	}

	body, ok := decodeObject(info.Body)
	if !ok {
		return nil, appErr.New(appErr.JudgeInvalidResponse).WithMessage(
			"LeetCode returned an unexpected (non-JSON) response when listing submissions. " +
				"Open the problem in your browser to confirm your session is still active and try again.")
	}

	history := &model.SubmissionHistory{
		Submissions: []model.SubmissionSummary{},
		HasNext:     model.Truthy(body["has_next"]),
	}
	dump, _ := body["submissions_dump"].([]any)
	for _, raw := range dump {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if summary, ok := c.toSummary(entry); ok {
			history.Submissions = append(history.Submissions, summary)
		}
	}
	return history, nil
}

func (c *Client) toSummary(entry map[string]any) (model.SubmissionSummary, bool) {
	id := model.FirstOf(entry, "id", "submission_id")
	if !model.Truthy(id) {
		return model.SubmissionSummary{}, false
	}

	summary := model.SubmissionSummary{
		SubmissionID:   *model.Stringify(id),
		Status:         model.Stringify(entry["status"]),
		StatusDisplay:  model.Stringify(entry["status_display"]),
		Lang:           model.Stringify(entry["lang"]),
		LangName:       model.Stringify(entry["lang_name"]),
		RuntimeDisplay: model.Stringify(model.FirstOf(entry, "runtime_display", "runtime")),
		MemoryDisplay:  model.Stringify(model.FirstOf(entry, "memory_display", "memory")),
		RelativeTime:   model.Stringify(entry["time"]),
		IsPending:      isPending(entry["is_pending"]),
		Runtime:        model.Stringify(entry["runtime"]),
		Memory:         model.Stringify(entry["memory"]),
	}
	if ts := model.IntValue(entry["timestamp"]); ts != nil {
		v := int64(*ts)
		summary.Timestamp = &v
	}
	if raw, ok := entry["url"].(string); ok && raw != "" {
		link := c.absolute(raw)
		summary.URL = &link
	}
	return summary, true
}

// isPending treats labels such as "Not Pending" as false.
func isPending(v any) bool {
	if s, ok := v.(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		return s != "" && !strings.Contains(s, "not")
	}
	return model.Truthy(v)
}

func historyError(slug string, status int, body []byte) error {
	switch status {
	case http.StatusForbidden:
		return appErr.New(appErr.SessionRejected).WithMessage(
			"LeetCode rejected the submissions request (HTTP 403). " +
				"Double-check that your stored cookies are still valid by fetching them again from the extension.").
			WithDetail("status_code", status)
	case http.StatusNotFound:
		return appErr.Newf(appErr.QuestionNotFound,
			"LeetCode did not recognise the problem slug %q. "+
				"Open the problem once in the browser to refresh your permissions and try again.", slug).
			WithDetail("status_code", status)
	case http.StatusTooManyRequests:
		return appErr.New(appErr.JudgeRateLimited).WithMessage(
			"LeetCode rate-limited the submissions request (HTTP 429). Please wait a moment before retrying.").
			WithDetail("status_code", status)
	}

	message := fmt.Sprintf("Fetching submissions failed with status %d.", status)
	if payload, ok := decodeObject(body); ok {
		if detail := model.FirstOf(payload, "detail", "message"); model.Truthy(detail) {
			message = *model.Stringify(detail)
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		message = message + " Response: " + truncateRunes(text, maxErrorSnippet)
	}
	return appErr.UpstreamError(status, "%s", message)
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
