package model

import "strings"

// Credential is the judge session cookie pair.
type Credential struct {
	Session   string `json:"leetcode_session"`
	CSRFToken string `json:"csrf_token"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (c Credential) Trimmed() Credential {
	return Credential{Session: strings.TrimSpace(c.Session), CSRFToken: strings.TrimSpace(c.CSRFToken)}
}

// Complete reports whether both fields are present.
func (c Credential) Complete() bool {
	return c.Session != "" && c.CSRFToken != ""
}

// Empty reports whether neither field is present.
func (c Credential) Empty() bool {
	return c.Session == "" && c.CSRFToken == ""
}

// SessionStatus is the session endpoint response.
type SessionStatus struct {
	Connected bool    `json:"connected"`
	Session   *string `json:"leetcode_session"`
	CSRFToken *string `json:"csrf_token"`
}
