package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/repository"
	"lcbridge/internal/language"
	appErr "lcbridge/pkg/errors"
	"lcbridge/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval   = 1500 * time.Millisecond
	DefaultMaxAttempts    = 20
	pendingStepEvery      = 3
	defaultPublishTimeout = 3 * time.Second
	maxPanicSummary       = 120
)

// SubmissionConfig holds submission workflow dependencies and settings.
type SubmissionConfig struct {
	Questions   QuestionLookup
	Judge       JudgeClient
	Credentials CredentialSource
	Events      repository.RunEventPublisher // optional

	PollInterval   time.Duration
	MaxAttempts    int
	PublishTimeout time.Duration
}

// SubmissionService drives the submit-then-poll workflow against the judge.
type SubmissionService struct {
	questions   QuestionLookup
	judge       JudgeClient
	credentials CredentialSource
	events      repository.RunEventPublisher

	pollInterval   time.Duration
	maxAttempts    int
	publishTimeout time.Duration
}

// SubmissionError is an aborted run. Steps holds the log up to the abort.
type SubmissionError struct {
	Code    appErr.ErrorCode
	Message string
	Steps   []model.SubmissionStep
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Outcome renders the abort as a response body.
func (e *SubmissionError) Outcome() model.SubmissionOutcome {
	return model.SubmissionOutcome{OK: false, Steps: e.Steps, Error: e.Message}
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(cfg SubmissionConfig) (*SubmissionService, error) {
	if cfg.Questions == nil {
		return nil, fmt.Errorf("question lookup is required")
	}
	if cfg.Judge == nil {
		return nil, fmt.Errorf("judge client is required")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credential source is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	return &SubmissionService{
		questions:      cfg.Questions,
		judge:          cfg.Judge,
		credentials:    cfg.Credentials,
		events:         cfg.Events,
		pollInterval:   cfg.PollInterval,
		maxAttempts:    cfg.MaxAttempts,
		publishTimeout: cfg.PublishTimeout,
	}, nil
}

// submissionRun is the per-request state threaded through the states.
type submissionRun struct {
	req       model.SubmitRequest
	startedAt time.Time

	slug         string
	code         string
	langCode     string
	questionID   string
	submissionID model.SubmissionID
	attempts     int
	state        string
	payload      map[string]any
	verdict      model.StepStatus

	steps  []model.SubmissionStep
	result *model.SubmissionResult
	err    *SubmissionError
}

func (r *submissionRun) add(step string, status model.StepStatus, detail string) {
	r.steps = append(r.steps, model.SubmissionStep{Step: step, Status: status, Detail: detail})
}

// abort ends the run. The failing step must already be in the log.
func (r *submissionRun) abort(code appErr.ErrorCode, message string, cause error) stateFn {
	r.err = &SubmissionError{Code: code, Message: message, Err: cause}
	return nil
}

// abortWith ends the run with the collaborator's own code and message.
func (r *submissionRun) abortWith(step string, err error) stateFn {
	r.add(step, model.StepError, err.Error())
	return r.abort(appErr.GetCode(err), err.Error(), err)
}

// stateFn performs one transition and returns the next state, or nil when
// the run is complete or aborted.
type stateFn func(ctx context.Context, run *submissionRun) stateFn

// Submit runs the workflow. A non-nil error is always a *SubmissionError
// carrying the partial step log.
func (s *SubmissionService) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmissionOutcome, error) {
	run := &submissionRun{req: req, startedAt: time.Now()}
	s.execute(ctx, run)
	s.publish(ctx, run)

	if run.err != nil {
		run.err.Steps = run.steps
		s.logAbort(ctx, run)
		return nil, run.err
	}
	last := run.steps[len(run.steps)-1]
	return &model.SubmissionOutcome{
		OK:     last.Status != model.StepError,
		Steps:  run.steps,
		Result: run.result,
	}, nil
}

func (s *SubmissionService) execute(ctx context.Context, run *submissionRun) {
	defer func() {
		if r := recover(); r != nil {
			summary := fmt.Sprint(r)
			if len(summary) > maxPanicSummary {
				summary = summary[:maxPanicSummary]
			}
			logger.Error(ctx, "submission workflow panicked",
				zap.String("slug", run.req.Slug),
				zap.Any("panic", r),
			)
			run.add("unexpected-error", model.StepError, summary)
			run.abort(appErr.SubmissionFailed, "Unexpected error while submitting to LeetCode.", nil)
		}
	}()

	for state := s.start; state != nil; {
		state = state(ctx, run)
	}
}

func (s *SubmissionService) start(_ context.Context, run *submissionRun) stateFn {
	run.add("start", model.StepInfo, "Starting submission workflow.")
	return s.validateRequest
}

func (s *SubmissionService) validateRequest(_ context.Context, run *submissionRun) stateFn {
	run.slug = strings.TrimSpace(run.req.Slug)
	if run.slug == "" {
		run.add("validate-request", model.StepError, "Question slug is required.")
		return run.abort(appErr.RequiredFieldEmpty, "Question slug is required.", nil)
	}
	run.code = strings.TrimRightFunc(run.req.Code, unicode.IsSpace)
	if run.code == "" {
		run.add("prepare-code", model.StepError, "Code snippet is empty.")
		return run.abort(appErr.RequiredFieldEmpty, "Code snippet is empty.", nil)
	}
	run.add("validate-request", model.StepSuccess, fmt.Sprintf("Prepared %d bytes of code for %s.", len(run.code), run.slug))
	return s.resolveLanguage
}

func (s *SubmissionService) resolveLanguage(_ context.Context, run *submissionRun) stateFn {
	code, ok := language.ResolveSubmissionCode(run.req.Language)
	if !ok {
		detail := fmt.Sprintf("Unsupported language %q.", run.req.Language)
		run.add("resolve-language", model.StepError, detail)
		return run.abort(appErr.LanguageNotSupported, detail, nil)
	}
	run.langCode = code
	run.add("resolve-language", model.StepSuccess, fmt.Sprintf("Using %s for submission.", code))
	return s.validateSession
}

func (s *SubmissionService) validateSession(ctx context.Context, run *submissionRun) stateFn {
	cred, err := s.credentials.Active(ctx)
	if err != nil {
		return run.abortWith("validate-session", err)
	}
	if !cred.Trimmed().Complete() {
		run.add("validate-session", model.StepError, "Missing LEETCODE_SESSION or csrftoken.")
		return run.abort(appErr.SessionMissing, appErr.SessionMissing.Message(), nil)
	}
	run.add("validate-session", model.StepSuccess, "LeetCode session detected.")
	return s.fetchQuestion
}

func (s *SubmissionService) fetchQuestion(ctx context.Context, run *submissionRun) stateFn {
	id, err := s.questions.Resolve(ctx, run.slug)
	if err != nil {
		return run.abortWith("fetch-question", err)
	}
	run.questionID = id
	run.add("fetch-question", model.StepSuccess, fmt.Sprintf("Resolved question id %s.", id))
	return s.submit
}

func (s *SubmissionService) submit(ctx context.Context, run *submissionRun) stateFn {
	id, err := s.judge.Submit(ctx, run.slug, run.questionID, run.langCode, run.code)
	if err != nil {
		return run.abortWith("submit", err)
	}
	if id == "" {
		run.add("submit", model.StepError, appErr.SubmissionNotCreated.Message())
		return run.abort(appErr.SubmissionNotCreated, appErr.SubmissionNotCreated.Message(), nil)
	}
	run.submissionID = id
	run.add("submit", model.StepSuccess, fmt.Sprintf("Submission created with id %s.", id))
	return s.poll
}

// poll is one check attempt. It loops on itself while the judge is busy.
func (s *SubmissionService) poll(ctx context.Context, run *submissionRun) stateFn {
	if run.attempts >= s.maxAttempts {
		run.add("check", model.StepError, appErr.SubmissionTimeout.Message())
		return run.abort(appErr.SubmissionTimeout, appErr.SubmissionTimeout.Message(), nil)
	}
	if err := s.wait(ctx); err != nil {
		run.add("check", model.StepError, "Submission polling was canceled.")
		return run.abort(appErr.SubmissionCanceled, appErr.SubmissionCanceled.Message(), err)
	}
	run.attempts++

	payload, err := s.judge.CheckStatus(ctx, run.slug, run.submissionID)
	if err != nil {
		return run.abortWith("check", err)
	}
	state := ""
	if v := model.Stringify(payload["state"]); v != nil {
		state = strings.ToUpper(strings.TrimSpace(*v))
	}
	if state == "PENDING" || state == "STARTED" {
		if run.attempts%pendingStepEvery == 0 {
			run.add("check", model.StepInfo, fmt.Sprintf("Waiting for evaluation (state: %s).", state))
		}
		return s.poll
	}
	run.state = state
	run.payload = payload
	return s.classify
}

func (s *SubmissionService) wait(ctx context.Context) error {
	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classify records the judge's terminal verdict.
func (s *SubmissionService) classify(_ context.Context, run *submissionRun) stateFn {
	statusMsg := "Unknown"
	if raw := run.payload["status_msg"]; model.Truthy(raw) {
		statusMsg = *model.Stringify(raw)
	}
	run.verdict = verdictOf(run.state, statusMsg)
	run.add("check", run.verdict, fmt.Sprintf("%s (state: %s)", statusMsg, run.state))
	run.result = normalizeResult(run.submissionID, run.state, run.payload)
	return s.complete
}

func (s *SubmissionService) complete(_ context.Context, run *submissionRun) stateFn {
	switch run.verdict {
	case model.StepSuccess:
		run.add("complete", model.StepSuccess, "LeetCode accepted the submission.")
	case model.StepInfo:
		run.add("complete", model.StepInfo, "LeetCode finished processing the submission.")
	default:
		run.add("complete", model.StepError, "LeetCode reported an issue with the submission.")
	}
	return nil
}

// verdictOf maps a terminal judge state to a step status. A finished run
// that was not accepted is informational, not a system failure.
func verdictOf(state, statusMsg string) model.StepStatus {
	if state != "SUCCESS" {
		return model.StepError
	}
	if strings.EqualFold(strings.TrimSpace(statusMsg), "accepted") {
		return model.StepSuccess
	}
	return model.StepInfo
}

// normalizeResult folds the judge's field variants into one result shape.
func normalizeResult(id model.SubmissionID, state string, payload map[string]any) *model.SubmissionResult {
	return &model.SubmissionResult{
		SubmissionID:   id,
		State:          model.StringPtr(state),
		StatusMsg:      model.Stringify(payload["status_msg"]),
		Lang:           model.Stringify(payload["lang"]),
		Runtime:        model.Stringify(model.FirstOf(payload, "runtime", "status_runtime")),
		Memory:         model.Stringify(model.FirstOf(payload, "memory", "status_memory")),
		TotalCorrect:   model.Stringify(payload["total_correct"]),
		TotalTestcases: model.Stringify(payload["total_testcases"]),
		LastTestcase:   model.Stringify(model.FirstOf(payload, "last_testcase", "input")),
		ExpectedOutput: model.Stringify(payload["expected_output"]),
		CodeOutput:     model.Stringify(payload["code_output"]),
		RuntimeError:   model.Stringify(model.FirstOf(payload, "runtime_error", "full_runtime_error")),
		CompileError:   model.Stringify(model.FirstOf(payload, "compile_error", "full_compile_error")),
	}
}

func (s *SubmissionService) publish(ctx context.Context, run *submissionRun) {
	if s.events == nil {
		return
	}
	event := model.RunEvent{
		EventID:    uuid.NewString(),
		Slug:       strings.TrimSpace(run.req.Slug),
		Language:   run.req.Language,
		OK:         run.err == nil,
		Duration:   time.Since(run.startedAt).Seconds(),
		FinishedAt: time.Now().UTC(),
		StepCount:  len(run.steps),
	}
	if n := len(run.steps); n > 0 {
		event.LastStep = run.steps[n-1].Step
		if run.err == nil {
			event.OK = run.steps[n-1].Status != model.StepError
		}
	}
	if run.err != nil {
		event.Error = run.err.Message
	}
	if run.result != nil {
		if run.result.State != nil {
			event.State = *run.result.State
		}
		if run.result.StatusMsg != nil {
			event.StatusMsg = *run.result.StatusMsg
		}
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.events.PublishRun(pubCtx, event); err != nil {
		logger.Warn(ctx, "publish run event failed", zap.String("slug", event.Slug), zap.Error(err))
	}
}

func (s *SubmissionService) logAbort(ctx context.Context, run *submissionRun) {
	fields := []zap.Field{
		zap.String("slug", run.req.Slug),
		zap.String("step", run.steps[len(run.steps)-1].Step),
		zap.Int("code", int(run.err.Code)),
		zap.String("message", run.err.Message),
	}
	switch {
	case run.err.Code >= appErr.JudgeRequestFailed && run.err.Code < appErr.SubmissionFailed,
		run.err.Code == appErr.SubmissionTimeout,
		run.err.Code == appErr.Timeout:
		logger.Warn(ctx, "submission aborted by judge", append(fields, zap.Error(run.err.Err))...)
	case run.err.Code == appErr.SubmissionFailed, run.err.Code == appErr.InternalServerError, run.err.Code == appErr.CacheError:
		logger.Error(ctx, "submission aborted", append(fields, zap.Error(run.err.Err))...)
	default:
		logger.Info(ctx, "submission rejected", fields...)
	}
}
