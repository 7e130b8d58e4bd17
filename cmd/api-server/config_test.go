package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/repository"
	"lcbridge/internal/assist/service"

	"github.com/gin-gonic/gin"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api-server.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := loadAppConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadAppConfig: %v", err)
	}
	if cfg.Server.Addr != defaultHTTPAddr || cfg.Server.WriteTimeout < defaultWriteTimeout {
		t.Fatalf("server defaults = %+v", cfg.Server)
	}
	if !cfg.CORS.Enabled || len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != defaultFrontendOrigin {
		t.Fatalf("cors defaults = %+v", cfg.CORS)
	}
	if cfg.Session.RedisKey != defaultSessionKey || cfg.Cache.QuestionTTL != defaultQuestionCacheTTL {
		t.Fatalf("session/cache defaults = %+v %+v", cfg.Session, cfg.Cache)
	}
}

func TestWriteTimeoutCoversSubmitPolling(t *testing.T) {
	path := writeConfig(t, `
server:
  writeTimeout: 60s
leetcode:
  timeout: 10s
  submitTimeout: 20s
submission:
  pollInterval: 1s
  maxAttempts: 5
`)
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("loadAppConfig: %v", err)
	}
	// 10s lookup + 20s submit + 5 polls of (1s wait + 20s call).
	want := 135*time.Second + writeTimeoutMargin
	if cfg.Server.WriteTimeout != want {
		t.Fatalf("write timeout = %v, want %v", cfg.Server.WriteTimeout, want)
	}

	defaults, err := loadAppConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadAppConfig: %v", err)
	}
	if defaults.Server.WriteTimeout < 675*time.Second {
		t.Fatalf("default write timeout = %v, shorter than the poll budget", defaults.Server.WriteTimeout)
	}
}

func TestWriteTimeoutKeepsLargerValue(t *testing.T) {
	path := writeConfig(t, "server:\n  writeTimeout: 30m\n")
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("loadAppConfig: %v", err)
	}
	if cfg.Server.WriteTimeout != 30*time.Minute {
		t.Fatalf("write timeout = %v, want 30m", cfg.Server.WriteTimeout)
	}
}

func TestLoadAppConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
leetcode:
  baseURL: https://leetcode.cn
  timeout: 5s
session:
  leetcodeSession: file-session
submission:
  pollInterval: 500ms
  maxAttempts: 4
redis:
  enabled: true
  addr: 127.0.0.1:6379
rateLimit:
  submit:
    ipMax: 10
`)
	t.Setenv("LEETCODE_CSRF_TOKEN", " env-csrf ")
	t.Setenv("FRONTEND_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("loadAppConfig: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.LeetCode.BaseURL != "https://leetcode.cn" || cfg.LeetCode.Timeout != 5*time.Second {
		t.Fatalf("file values not applied: %+v %+v", cfg.Server, cfg.LeetCode)
	}
	if cfg.Submission.PollInterval != 500*time.Millisecond || cfg.Submission.MaxAttempts != 4 {
		t.Fatalf("submission = %+v", cfg.Submission)
	}
	if got := cfg.FallbackCredential(); got != (model.Credential{Session: "file-session", CSRFToken: "env-csrf"}) {
		t.Fatalf("fallback = %+v", got)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Redis.Addr != "127.0.0.1:6379" || cfg.Redis.PoolSize == 0 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if cfg.RateLimit.Submit.IPMax != 10 || cfg.RateLimit.Submit.Window != defaultRateLimitWindow {
		t.Fatalf("rate limit = %+v", cfg.RateLimit.Submit)
	}
}

func TestLoadAppConfigRejectsIncompleteSections(t *testing.T) {
	cases := map[string]string{
		"redis":  "redis:\n  enabled: true\n",
		"kafka":  "runEvents:\n  enabled: true\n",
		"syntax": "server: [",
	}
	for name, body := range cases {
		if _, err := loadAppConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRouterServesCORSAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := loadAppConfig("")
	if err != nil {
		t.Fatalf("loadAppConfig: %v", err)
	}
	store := repository.NewMemoryCredentialStore(model.Credential{})
	router := buildRouter(cfg, services{
		sessions: service.NewSessionService(store),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", defaultFrontendOrigin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != defaultFrontendOrigin {
		t.Fatalf("allow origin = %q", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatal("missing trace id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/leetcode/session", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("session = %d", rec.Code)
	}
}
