package judgeclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"lcbridge/internal/assist/model"
	appErr "lcbridge/pkg/errors"
)

type submitPayload struct {
	Lang       string `json:"lang"`
	QuestionID string `json:"question_id"`
	TypedCode  string `json:"typed_code"`
	DataInput  string `json:"data_input"`
	TestMode   bool   `json:"test_mode"`
}

func (c *Client) submissionHeaders(ctx context.Context, slug string) (map[string]string, error) {
	headers, _, err := c.headers(ctx, headerOptions{
		referer:     c.problemURL(slug, ""),
		contentType: true,
		xhr:         true,
	})
	return headers, err
}

// Submit posts code for judging and returns the new submission id.
func (c *Client) Submit(ctx context.Context, slug, questionID, lang, code string) (model.SubmissionID, error) {
	headers, err := c.submissionHeaders(ctx, slug)
	if err != nil {
		return "", err
	}
	payload := submitPayload{
		Lang:       lang,
		QuestionID: questionID,
		TypedCode:  code,
	}
	path := fmt.Sprintf("/problems/%s/submit/", url.PathEscape(slug))
	info, err := c.send(ctx, http.MethodPost, path, headers, payload)
	if err != nil {
		return "", err
	}
	if !info.OK() {
		return "", appErr.UpstreamError(info.StatusCode, "Submission request failed with status %d.", info.StatusCode)
	}

	body, ok := decodeObject(info.Body)
	if !ok {
		return "", appErr.New(appErr.JudgeInvalidResponse).WithMessage("LeetCode returned a non-JSON response when submitting the code.")
	}
	id := model.FirstOf(body, "submission_id", "submissionId")
	if !model.Truthy(id) {
		return "", appErr.New(appErr.SubmissionNotCreated)
	}
	return model.SubmissionID(*model.Stringify(id)), nil
}

// CheckStatus fetches the raw verdict payload for a submission.
func (c *Client) CheckStatus(ctx context.Context, slug string, id model.SubmissionID) (map[string]any, error) {
	headers, err := c.submissionHeaders(ctx, slug)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/submissions/detail/%s/check/", url.PathEscape(string(id)))
	info, err := c.send(ctx, http.MethodGet, path, headers, nil)
	if err != nil {
		return nil, err
	}
	if !info.OK() {
		return nil, appErr.UpstreamError(info.StatusCode, "Check request failed with status %d.", info.StatusCode)
	}

	body, ok := decodeObject(info.Body)
	if !ok {
		return nil, appErr.New(appErr.JudgeInvalidResponse).WithMessage("LeetCode returned a non-JSON response when checking submission status.")
	}
	return body, nil
}
