package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/service"
	pkgerrors "lcbridge/pkg/errors"
)

type fakeCreds struct {
	cred model.Credential
	err  error
}

func (f fakeCreds) Active(context.Context) (model.Credential, error) {
	return f.cred, f.err
}

type fakeQuestions struct {
	id    string
	err   error
	calls int
}

func (f *fakeQuestions) Resolve(context.Context, string) (string, error) {
	f.calls++
	return f.id, f.err
}

type submitCall struct {
	slug, questionID, lang, code string
}

type fakeJudge struct {
	submitID    model.SubmissionID
	submitErr   error
	statuses    []map[string]any
	checkErr    error
	panicOnPoll bool

	submits []submitCall
	checks  int
}

func (f *fakeJudge) Submit(_ context.Context, slug, questionID, lang, code string) (model.SubmissionID, error) {
	f.submits = append(f.submits, submitCall{slug: slug, questionID: questionID, lang: lang, code: code})
	return f.submitID, f.submitErr
}

func (f *fakeJudge) CheckStatus(context.Context, string, model.SubmissionID) (map[string]any, error) {
	if f.panicOnPoll {
		panic("nil map in checker")
	}
	f.checks++
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	if len(f.statuses) == 0 {
		return map[string]any{"state": "PENDING"}, nil
	}
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.RunEvent
	err    error
}

func (f *fakePublisher) PublishRun(_ context.Context, event model.RunEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

var validCreds = fakeCreds{cred: model.Credential{Session: "sess", CSRFToken: "csrf"}}

func newSubmissionService(t *testing.T, creds service.CredentialSource, questions *fakeQuestions, judge *fakeJudge, events *fakePublisher) *service.SubmissionService {
	t.Helper()
	cfg := service.SubmissionConfig{
		Questions:    questions,
		Judge:        judge,
		Credentials:  creds,
		PollInterval: time.Millisecond,
	}
	if events != nil {
		cfg.Events = events
	}
	svc, err := service.NewSubmissionService(cfg)
	if err != nil {
		t.Fatalf("NewSubmissionService: %v", err)
	}
	return svc
}

func stepNames(steps []model.SubmissionStep) string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Step+":"+string(s.Status))
	}
	return strings.Join(names, ",")
}

func submissionError(t *testing.T, err error) *service.SubmissionError {
	t.Helper()
	var subErr *service.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected *SubmissionError, got %T: %v", err, err)
	}
	if len(subErr.Steps) == 0 {
		t.Fatal("aborted run has an empty step log")
	}
	return subErr
}

func TestSubmitKeepsLooseCountsAndTrimsAllTrailingSpace(t *testing.T) {
	judge := &fakeJudge{
		submitID: "101",
		statuses: []map[string]any{
			{"state": "SUCCESS", "status_msg": "Wrong Answer", "total_correct": json.Number("3.5"), "total_testcases": "abc"},
		},
	}
	svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, &fakePublisher{})

	outcome, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "print(1)\f\v\u00a0\u3000\r\n"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if judge.submits[0].code != "print(1)" {
		t.Fatalf("submitted code = %q", judge.submits[0].code)
	}
	result := outcome.Result
	if result == nil || result.TotalCorrect == nil || *result.TotalCorrect != "3.5" || result.TotalTestcases == nil || *result.TotalTestcases != "abc" {
		t.Fatalf("counts dropped: %+v", result)
	}
}

func TestSubmitAccepted(t *testing.T) {
	questions := &fakeQuestions{id: "1"}
	judge := &fakeJudge{
		submitID: "100",
		statuses: []map[string]any{
			{"state": "PENDING"},
			{"state": "SUCCESS", "status_msg": "Accepted", "status_runtime": "40 ms",
				"memory": "16.4 MB", "total_correct": json.Number("63"), "total_testcases": json.Number("63"), "lang": "python3"},
		},
	}
	events := &fakePublisher{}
	svc := newSubmissionService(t, validCreds, questions, judge, events)

	outcome, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "def f(): pass\n\n"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("expected ok, steps: %s", stepNames(outcome.Steps))
	}
	last := outcome.Steps[len(outcome.Steps)-1]
	if last.Step != "complete" || last.Status != model.StepSuccess {
		t.Fatalf("unexpected last step: %+v", last)
	}
	want := "start:info,validate-request:success,resolve-language:success,validate-session:success," +
		"fetch-question:success,submit:success,check:success,complete:success"
	if got := stepNames(outcome.Steps); got != want {
		t.Fatalf("steps = %s", got)
	}

	result := outcome.Result
	if result == nil || *result.State != "SUCCESS" || *result.StatusMsg != "Accepted" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if *result.Runtime != "40 ms" || *result.TotalCorrect != "63" || result.CompileError != nil {
		t.Fatalf("result not normalized: %+v", result)
	}
	if judge.submits[0].code != "def f(): pass" || judge.submits[0].lang != "python3" || judge.submits[0].questionID != "1" {
		t.Fatalf("unexpected submit call: %+v", judge.submits[0])
	}

	encoded, _ := json.Marshal(result)
	if !strings.Contains(string(encoded), `"submission_id":100`) || !strings.Contains(string(encoded), `"last_testcase":null`) {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	if len(events.events) != 1 || !events.events[0].OK || events.events[0].State != "SUCCESS" || events.events[0].EventID == "" {
		t.Fatalf("unexpected run events: %+v", events.events)
	}
}

func TestSubmitMissingCredentials(t *testing.T) {
	cases := map[string]model.Credential{
		"both missing":  {},
		"no csrf":       {Session: "sess"},
		"blank session": {Session: "  ", CSRFToken: "csrf"},
	}
	for name, cred := range cases {
		t.Run(name, func(t *testing.T) {
			questions := &fakeQuestions{id: "1"}
			judge := &fakeJudge{submitID: "100"}
			svc := newSubmissionService(t, fakeCreds{cred: cred}, questions, judge, nil)

			outcome, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "x"})
			if outcome != nil {
				t.Fatalf("expected no outcome, got %+v", outcome)
			}
			subErr := submissionError(t, err)
			if subErr.Code != pkgerrors.SessionMissing {
				t.Fatalf("code = %d", subErr.Code)
			}
			last := subErr.Steps[len(subErr.Steps)-1]
			if last.Step != "validate-session" || last.Status != model.StepError {
				t.Fatalf("unexpected last step: %+v", last)
			}
			if questions.calls != 0 || len(judge.submits) != 0 || judge.checks != 0 {
				t.Fatalf("collaborators called: questions=%d submits=%d checks=%d", questions.calls, len(judge.submits), judge.checks)
			}
			if out := subErr.Outcome(); out.OK || out.Result != nil {
				t.Fatalf("unexpected outcome: %+v", out)
			}
		})
	}
}

func TestSubmitPollExhaustion(t *testing.T) {
	judge := &fakeJudge{submitID: "100", statuses: []map[string]any{{"state": "PENDING"}}}
	svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, nil)

	_, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "x"})
	subErr := submissionError(t, err)
	if subErr.Code != pkgerrors.SubmissionTimeout {
		t.Fatalf("code = %d", subErr.Code)
	}
	if judge.checks != 20 {
		t.Fatalf("checks = %d, want 20", judge.checks)
	}

	waiting := 0
	for _, s := range subErr.Steps {
		if s.Step == "check" && s.Status == model.StepInfo {
			waiting++
		}
	}
	if waiting != 6 {
		t.Fatalf("waiting steps = %d, want 6", waiting)
	}
	last := subErr.Steps[len(subErr.Steps)-1]
	if last.Step != "check" || last.Status != model.StepError || !strings.Contains(last.Detail, "Timed out") {
		t.Fatalf("unexpected last step: %+v", last)
	}

	encoded, _ := json.Marshal(subErr.Outcome())
	if strings.Contains(string(encoded), `"result"`) {
		t.Fatalf("timeout outcome carries a result: %s", encoded)
	}
}

func TestSubmitNotAcceptedIsInformational(t *testing.T) {
	judge := &fakeJudge{submitID: "abc", statuses: []map[string]any{
		{"state": "SUCCESS", "status_msg": "Wrong Answer", "input": "[1,2]", "expected_output": "[0,1]", "code_output": "[]"},
	}}
	svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, nil)

	outcome, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "py", Code: "x"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.OK || outcome.Result == nil {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	tail := outcome.Steps[len(outcome.Steps)-2:]
	if tail[0].Status != model.StepInfo || tail[0].Detail != "Wrong Answer (state: SUCCESS)" || tail[1].Status != model.StepInfo {
		t.Fatalf("unexpected tail: %+v", tail)
	}
	if *outcome.Result.LastTestcase != "[1,2]" {
		t.Fatalf("last_testcase = %v", outcome.Result.LastTestcase)
	}
	encoded, _ := json.Marshal(outcome.Result)
	if !strings.Contains(string(encoded), `"submission_id":"abc"`) {
		t.Fatalf("non numeric id should stay textual: %s", encoded)
	}
}

func TestSubmitJudgeFailureStateEndsInError(t *testing.T) {
	judge := &fakeJudge{submitID: "7", statuses: []map[string]any{{"state": "FAILURE"}}}
	svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, nil)

	outcome, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "go", Code: "package main"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.OK || outcome.Result == nil {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Steps[len(outcome.Steps)-2].Detail != "Unknown (state: FAILURE)" {
		t.Fatalf("unexpected check detail: %+v", outcome.Steps)
	}
	if outcome.Result.StatusMsg != nil {
		t.Fatalf("absent status_msg should stay null")
	}
	if judge.submits[0].lang != "golang" {
		t.Fatalf("lang = %q", judge.submits[0].lang)
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name     string
		req      model.SubmitRequest
		step     string
		code     pkgerrors.ErrorCode
		contains string
	}{
		{name: "empty slug", req: model.SubmitRequest{Slug: "  ", Language: "python3", Code: "x"}, step: "validate-request", code: pkgerrors.RequiredFieldEmpty},
		{name: "blank code", req: model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: " \n\t"}, step: "prepare-code", code: pkgerrors.RequiredFieldEmpty},
		{name: "unsupported language", req: model.SubmitRequest{Slug: "two-sum", Language: "brainfudge", Code: "x"}, step: "resolve-language", code: pkgerrors.LanguageNotSupported, contains: `"brainfudge"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			judge := &fakeJudge{submitID: "1"}
			svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, nil)
			_, err := svc.Submit(context.Background(), tc.req)
			subErr := submissionError(t, err)
			last := subErr.Steps[len(subErr.Steps)-1]
			if subErr.Code != tc.code || last.Step != tc.step || last.Status != model.StepError {
				t.Fatalf("code=%d last=%+v", subErr.Code, last)
			}
			if !strings.Contains(subErr.Message, tc.contains) {
				t.Fatalf("message %q missing %q", subErr.Message, tc.contains)
			}
			if len(judge.submits) != 0 {
				t.Fatal("judge should not be called")
			}
		})
	}
}

func TestSubmitCollaboratorFailures(t *testing.T) {
	t.Run("question lookup", func(t *testing.T) {
		questions := &fakeQuestions{err: pkgerrors.Newf(pkgerrors.QuestionNotFound, "Question ID not found for slug %q.", "nope")}
		svc := newSubmissionService(t, validCreds, questions, &fakeJudge{}, nil)
		_, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "nope", Language: "python3", Code: "x"})
		subErr := submissionError(t, err)
		last := subErr.Steps[len(subErr.Steps)-1]
		if subErr.Code != pkgerrors.QuestionNotFound || last.Step != "fetch-question" || last.Detail != subErr.Message {
			t.Fatalf("unexpected abort: %+v %+v", subErr, last)
		}
	})

	t.Run("submit rejected", func(t *testing.T) {
		judge := &fakeJudge{submitErr: pkgerrors.UpstreamError(403, "Submission request failed with status %d.", 403)}
		svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, nil)
		_, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "x"})
		subErr := submissionError(t, err)
		if subErr.Code != pkgerrors.JudgeRequestFailed || subErr.Message != "Submission request failed with status 403." {
			t.Fatalf("unexpected abort: %+v", subErr)
		}
		if judge.checks != 0 {
			t.Fatal("poll should not start")
		}
	})

	t.Run("check transport failure", func(t *testing.T) {
		judge := &fakeJudge{submitID: "5", checkErr: pkgerrors.New(pkgerrors.JudgeInvalidResponse).WithMessage("non-JSON")}
		svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, nil)
		_, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "x"})
		subErr := submissionError(t, err)
		if subErr.Code != pkgerrors.JudgeInvalidResponse || judge.checks != 1 {
			t.Fatalf("unexpected abort: %+v checks=%d", subErr, judge.checks)
		}
	})
}

func TestSubmitCanceledWhilePolling(t *testing.T) {
	judge := &fakeJudge{submitID: "100"}
	svc, err := service.NewSubmissionService(service.SubmissionConfig{
		Questions:    &fakeQuestions{id: "1"},
		Judge:        judge,
		Credentials:  validCreds,
		PollInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewSubmissionService: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Submit(ctx, model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "x"})
	subErr := submissionError(t, err)
	if subErr.Code != pkgerrors.SubmissionCanceled || judge.checks != 0 {
		t.Fatalf("unexpected abort: %+v checks=%d", subErr, judge.checks)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("cause not preserved: %v", err)
	}
}

func TestSubmitRecoversPanics(t *testing.T) {
	judge := &fakeJudge{submitID: "100", panicOnPoll: true}
	events := &fakePublisher{err: errors.New("broker down")}
	svc := newSubmissionService(t, validCreds, &fakeQuestions{id: "1"}, judge, events)

	_, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "x"})
	subErr := submissionError(t, err)
	last := subErr.Steps[len(subErr.Steps)-1]
	if last.Step != "unexpected-error" || subErr.Message != "Unexpected error while submitting to LeetCode." {
		t.Fatalf("unexpected abort: %+v %+v", subErr, last)
	}
	if len(events.events) != 1 || events.events[0].OK || events.events[0].LastStep != "unexpected-error" {
		t.Fatalf("unexpected run events: %+v", events.events)
	}
}

func TestSubmitCredentialStoreError(t *testing.T) {
	creds := fakeCreds{err: pkgerrors.Wrap(errors.New("dial tcp"), pkgerrors.CacheError)}
	svc := newSubmissionService(t, creds, &fakeQuestions{id: "1"}, &fakeJudge{}, nil)
	_, err := svc.Submit(context.Background(), model.SubmitRequest{Slug: "two-sum", Language: "python3", Code: "x"})
	subErr := submissionError(t, err)
	if subErr.Code != pkgerrors.CacheError {
		t.Fatalf("code = %d", subErr.Code)
	}
}

func TestNewSubmissionServiceRequiresCollaborators(t *testing.T) {
	if _, err := service.NewSubmissionService(service.SubmissionConfig{}); err == nil {
		t.Fatal("expected error for missing collaborators")
	}
}
