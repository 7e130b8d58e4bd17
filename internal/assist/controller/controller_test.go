package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lcbridge/internal/assist/controller"
	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/repository"
	"lcbridge/internal/assist/service"
	"lcbridge/internal/common/http/middleware"
	pkgerrors "lcbridge/pkg/errors"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	TraceID string          `json:"trace_id"`
}

type fakeJudge struct {
	potdErr    error
	historyErr error
	limit      int
	statuses   []map[string]any
}

func (f *fakeJudge) FetchDailyChallenge(context.Context) (*model.POTD, error) {
	if f.potdErr != nil {
		return nil, f.potdErr
	}
	return &model.POTD{Date: "2024-05-01", Slug: "two-sum", Title: "Two Sum", Difficulty: "Easy", Tags: []model.Tag{}}, nil
}

func (f *fakeJudge) FetchSubmissions(_ context.Context, _ string, limit int) (*model.SubmissionHistory, error) {
	f.limit = limit
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return &model.SubmissionHistory{Submissions: []model.SubmissionSummary{{SubmissionID: "7"}}, HasNext: true}, nil
}

func (f *fakeJudge) FetchQuestionID(context.Context, string) (string, error) {
	return "1", nil
}

func (f *fakeJudge) FetchCandidates(context.Context, string, string, string, int) ([]model.CandidateDocument, error) {
	return []model.CandidateDocument{{ID: "5", Title: "Fast", Content: "```python\ndef f(): pass\n```"}}, nil
}

func (f *fakeJudge) Submit(context.Context, string, string, string, string) (model.SubmissionID, error) {
	return "100", nil
}

func (f *fakeJudge) CheckStatus(context.Context, string, model.SubmissionID) (map[string]any, error) {
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	router *gin.Engine
	judge  *fakeJudge
	store  *repository.MemoryCredentialStore
}

func newTestServer(t *testing.T, deps map[string]controller.Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	judge := &fakeJudge{statuses: []map[string]any{{"state": "SUCCESS", "status_msg": "Accepted"}}}
	store := repository.NewMemoryCredentialStore(model.Credential{})
	resolver := service.NewQuestionResolver(repository.NewQuestionIDRepository(nil, nil, time.Hour), judge)
	submissions, err := service.NewSubmissionService(service.SubmissionConfig{
		Questions:    resolver,
		Judge:        judge,
		Credentials:  store,
		PollInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewSubmissionService: %v", err)
	}

	health := controller.NewHealthController(deps)
	problems := controller.NewProblemController(service.NewProblemService(judge))
	refs := controller.NewReferenceController(service.NewReferenceService(judge, nil, "https://leetcode.com"))
	sessions := controller.NewSessionController(service.NewSessionService(store))
	submit := controller.NewSubmissionController(submissions)

	router := gin.New()
	router.Use(middleware.TraceContextMiddleware())
	router.GET("/health", health.Health)
	router.GET("/readyz", health.Ready)
	router.GET("/api/potd", problems.DailyChallenge)
	router.GET("/api/references", refs.Get)
	router.GET("/api/leetcode/session", sessions.Get)
	router.POST("/api/leetcode/session", sessions.Set)
	router.DELETE("/api/leetcode/session", sessions.Clear)
	router.GET("/api/leetcode/submissions", problems.Submissions)
	router.POST("/api/leetcode/submit", submit.Submit)

	return &testServer{router: router, judge: judge, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	return rec, env
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, map[string]controller.Pinger{"redis": nil})
	if rec, env := srv.do(t, http.MethodGet, "/health", nil); rec.Code != http.StatusOK || string(env.Data) != `{"status":"ok"}` {
		t.Fatalf("health = %d %s", rec.Code, env.Data)
	}
	if rec, _ := srv.do(t, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}

	down := newTestServer(t, map[string]controller.Pinger{"redis": failingPinger{}})
	rec, env := down.do(t, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable || env.Message != "redis is not ready" {
		t.Fatalf("readyz = %d %+v", rec.Code, env)
	}
}

func TestDailyChallengeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, env := srv.do(t, http.MethodGet, "/api/potd", nil)
	if rec.Code != http.StatusOK || env.Code != int(pkgerrors.Success) || env.TraceID == "" {
		t.Fatalf("potd = %d %+v", rec.Code, env)
	}
	var potd model.POTD
	_ = json.Unmarshal(env.Data, &potd)
	if potd.Slug != "two-sum" {
		t.Fatalf("unexpected potd: %+v", potd)
	}

	srv.judge.potdErr = pkgerrors.New(pkgerrors.JudgeInvalidResponse).WithMessage("Failed to parse POTD payload from LeetCode.")
	rec, env = srv.do(t, http.MethodGet, "/api/potd", nil)
	if rec.Code != http.StatusBadGateway || env.Code != int(pkgerrors.JudgeInvalidResponse) {
		t.Fatalf("potd failure = %d %+v", rec.Code, env)
	}
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	_, env := srv.do(t, http.MethodGet, "/api/leetcode/session", nil)
	if string(env.Data) != `{"connected":false,"leetcode_session":null,"csrf_token":null}` {
		t.Fatalf("initial session = %s", env.Data)
	}

	rec, _ := srv.do(t, http.MethodPost, "/api/leetcode/session", map[string]string{"leetcode_session": "s", "csrf_token": "c"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set = %d", rec.Code)
	}
	_, env = srv.do(t, http.MethodGet, "/api/leetcode/session", nil)
	if string(env.Data) != `{"connected":true,"leetcode_session":"s","csrf_token":"c"}` {
		t.Fatalf("session after set = %s", env.Data)
	}

	rec, env = srv.do(t, http.MethodPost, "/api/leetcode/session", map[string]string{"leetcode_session": "s"})
	if rec.Code != http.StatusBadRequest || env.Code != int(pkgerrors.ValidationFailed) {
		t.Fatalf("partial set = %d %+v", rec.Code, env)
	}

	srv.do(t, http.MethodDelete, "/api/leetcode/session", nil)
	if cred, _ := srv.store.Override(context.Background()); !cred.Empty() {
		t.Fatalf("override not cleared: %+v", cred)
	}
}

func TestSubmissionsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/leetcode/submissions?slug=two-sum", nil)
	if rec.Code != http.StatusOK || srv.judge.limit != 20 {
		t.Fatalf("history = %d limit=%d", rec.Code, srv.judge.limit)
	}
	var history model.SubmissionHistory
	_ = json.Unmarshal(env.Data, &history)
	if !history.HasNext || len(history.Submissions) != 1 {
		t.Fatalf("unexpected history: %s", env.Data)
	}

	for _, path := range []string{
		"/api/leetcode/submissions",
		"/api/leetcode/submissions?slug=two-sum&limit=0",
		"/api/leetcode/submissions?slug=two-sum&limit=51",
		"/api/leetcode/submissions?slug=two-sum&limit=abc",
	} {
		if rec, _ := srv.do(t, http.MethodGet, path, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s = %d", path, rec.Code)
		}
	}

	srv.judge.historyErr = pkgerrors.New(pkgerrors.SessionRejected).WithMessage("LeetCode rejected the submissions request (HTTP 403).")
	rec, env = srv.do(t, http.MethodGet, "/api/leetcode/submissions?slug=two-sum&limit=5", nil)
	if rec.Code != http.StatusForbidden || env.Code != int(pkgerrors.SessionRejected) || srv.judge.limit != 5 {
		t.Fatalf("history failure = %d %+v", rec.Code, env)
	}
}

func TestReferencesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/references?slug=two-sum&lang=python", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("references = %d", rec.Code)
	}
	var refs model.ReferencesResponse
	_ = json.Unmarshal(env.Data, &refs)
	if len(refs.Items) != 2 || refs.CommunitySolution == nil || *refs.CommunitySolution.Code != "def f(): pass" {
		t.Fatalf("unexpected references: %s", env.Data)
	}

	if rec, _ := srv.do(t, http.MethodGet, "/api/references", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing slug = %d", rec.Code)
	}
}

func TestSubmitEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	req := map[string]string{"slug": "two-sum", "language": "python3", "code": "def f(): pass"}

	rec, env := srv.do(t, http.MethodPost, "/api/leetcode/submit", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit = %d", rec.Code)
	}
	var outcome model.SubmissionOutcome
	_ = json.Unmarshal(env.Data, &outcome)
	if outcome.OK || outcome.Result != nil || outcome.Error == "" {
		t.Fatalf("expected session abort: %s", env.Data)
	}

	_ = srv.store.Set(context.Background(), model.Credential{Session: "s", CSRFToken: "c"})
	_, env = srv.do(t, http.MethodPost, "/api/leetcode/submit", req)
	outcome = model.SubmissionOutcome{}
	_ = json.Unmarshal(env.Data, &outcome)
	if !outcome.OK || outcome.Result == nil || *outcome.Result.StatusMsg != "Accepted" {
		t.Fatalf("unexpected outcome: %s", env.Data)
	}

	if rec, _ := srv.do(t, http.MethodPost, "/api/leetcode/submit", "not an object"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body = %d", rec.Code)
	}
}
