package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// StepStatus is the outcome of one workflow step.
type StepStatus string

const (
	StepInfo    StepStatus = "info"
	StepSuccess StepStatus = "success"
	StepError   StepStatus = "error"
)

// SubmissionStep is one entry of the append-only submission log.
type SubmissionStep struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// SubmissionID is the judge's submission identifier. It encodes as a JSON
// number when it is all digits and as a string otherwise.
type SubmissionID string

func (id SubmissionID) Numeric() bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

// MarshalJSON writes the canonical number for digit ids, so "007" becomes 7.
func (id SubmissionID) MarshalJSON() ([]byte, error) {
	if id.Numeric() {
		n, _ := strconv.ParseInt(string(id), 10, 64)
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

func (id *SubmissionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SubmissionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = SubmissionID(n.String())
	return nil
}

// SubmissionResult is the normalized verdict. Fields missing upstream stay nil.
type SubmissionResult struct {
	SubmissionID   SubmissionID `json:"submission_id"`
	State          *string      `json:"state"`
	StatusMsg      *string      `json:"status_msg"`
	Lang           *string      `json:"lang"`
	Runtime        *string      `json:"runtime"`
	Memory         *string      `json:"memory"`
	TotalCorrect   *string      `json:"total_correct"`
	TotalTestcases *string      `json:"total_testcases"`
	LastTestcase   *string      `json:"last_testcase"`
	ExpectedOutput *string      `json:"expected_output"`
	CodeOutput     *string      `json:"code_output"`
	RuntimeError   *string      `json:"runtime_error"`
	CompileError   *string      `json:"compile_error"`
}

// SubmissionOutcome is the response of one submission run.
type SubmissionOutcome struct {
	OK     bool              `json:"ok"`
	Steps  []SubmissionStep  `json:"steps"`
	Result *SubmissionResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// SubmitRequest is the submit endpoint payload.
type SubmitRequest struct {
	Slug     string `json:"slug"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

// RunEvent is published after every submission run.
type RunEvent struct {
	EventID    string    `json:"event_id"`
	Slug       string    `json:"slug"`
	Language   string    `json:"language"`
	OK         bool      `json:"ok"`
	State      string    `json:"state,omitempty"`
	StatusMsg  string    `json:"status_msg,omitempty"`
	LastStep   string    `json:"last_step"`
	StepCount  int       `json:"step_count"`
	Error      string    `json:"error,omitempty"`
	Duration   float64   `json:"duration_seconds"`
	FinishedAt time.Time `json:"finished_at"`
}
