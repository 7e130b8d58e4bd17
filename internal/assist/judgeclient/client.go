// Package judgeclient talks to the LeetCode web endpoints: GraphQL queries,
// code submission, verdict polling and submission history.
package judgeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/common/httpclient"
	appErr "lcbridge/pkg/errors"
)

const (
	DefaultBaseURL   = "https://leetcode.com"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// CredentialSource yields the session cookies sent with every request.
type CredentialSource interface {
	Active(ctx context.Context) (model.Credential, error)
}

// Config holds judge endpoint settings.
type Config struct {
	BaseURL       string        `yaml:"baseURL"`
	UserAgent     string        `yaml:"userAgent"`
	Timeout       time.Duration `yaml:"timeout"`
	SubmitTimeout time.Duration `yaml:"submitTimeout"`
}

// WithDefaults returns c with zero fields filled in.
func (c Config) WithDefaults() Config {
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 30 * time.Second
	}
}

// Client is the LeetCode HTTP client.
type Client struct {
	cfg   Config
	http  *httpclient.Client
	creds CredentialSource
}

// New creates a Client. creds may be nil for anonymous access.
func New(cfg Config, creds CredentialSource) *Client {
	cfg.setDefaults()
	return &Client{
		cfg:   cfg,
		http:  httpclient.New(cfg.BaseURL, cfg.SubmitTimeout, nil),
		creds: creds,
	}
}

// BaseURL returns the judge origin used for requests and links.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

type headerOptions struct {
	referer     string
	contentType bool
	xhr         bool
}

func (c *Client) headers(ctx context.Context, opts headerOptions) (map[string]string, model.Credential, error) {
	var cred model.Credential
	if c.creds != nil {
		active, err := c.creds.Active(ctx)
		if err != nil {
			return nil, cred, err
		}
		cred = active.Trimmed()
	}

	referer := opts.referer
	if referer == "" {
		referer = c.cfg.BaseURL
	}
	headers := map[string]string{
		"User-Agent": c.cfg.UserAgent,
		"Origin":     c.cfg.BaseURL,
		"Accept":     "application/json",
		"Referer":    referer,
	}
	if opts.contentType {
		headers["Content-Type"] = "application/json"
	}
	if opts.xhr {
		headers["X-Requested-With"] = "XMLHttpRequest"
	}
	if cred.CSRFToken != "" {
		headers["x-csrftoken"] = cred.CSRFToken
	}
	var cookies []string
	if cred.Session != "" {
		cookies = append(cookies, "LEETCODE_SESSION="+cred.Session)
	}
	if cred.CSRFToken != "" {
		cookies = append(cookies, "csrftoken="+cred.CSRFToken)
	}
	if len(cookies) > 0 {
		headers["Cookie"] = strings.Join(cookies, "; ")
	}
	return headers, cred, nil
}

func (c *Client) problemURL(slug string, suffix string) string {
	return fmt.Sprintf("%s/problems/%s/%s", c.cfg.BaseURL, slug, suffix)
}

// absolute resolves a judge-relative link against the base URL.
func (c *Client) absolute(link string) string {
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "/"):
		return c.cfg.BaseURL + link
	default:
		return c.cfg.BaseURL + "/" + link
	}
}

func (c *Client) send(ctx context.Context, method, path string, headers map[string]string, payload any) (httpclient.ResponseInfo, error) {
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return httpclient.ResponseInfo{}, appErr.Wrapf(err, appErr.InternalServerError, "encode request failed")
		}
		body = data
	}
	info, err := c.http.Do(ctx, method, path, headers, body)
	if err != nil {
		if ctx.Err() != nil {
			return info, appErr.Wrapf(err, appErr.Timeout, "LeetCode request was canceled or timed out.")
		}
		return info, appErr.Wrapf(err, appErr.JudgeRequestFailed, "Could not reach LeetCode: %v", err)
	}
	return info, nil
}

// decodeObject parses a JSON object keeping numbers as json.Number.
func decodeObject(data []byte) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}
