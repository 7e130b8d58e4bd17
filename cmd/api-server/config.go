package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"lcbridge/internal/assist/judgeclient"
	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/service"
	"lcbridge/internal/common/cache"
	commonmw "lcbridge/internal/common/http/middleware"
	"lcbridge/internal/common/mq"
	"lcbridge/pkg/utils/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8000"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	writeTimeoutMargin     = 5 * time.Second

	defaultFrontendOrigin   = "http://localhost:5173"
	defaultSessionKey       = "lcbridge:session:override"
	defaultQuestionCacheTTL = 24 * time.Hour
	defaultQuestionCacheMax = 1024
	defaultRateLimitWindow  = time.Minute
	defaultRunEventsTopic   = "lcbridge.submission.runs"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// SubmissionConfig holds the submit-and-poll cadence.
type SubmissionConfig struct {
	PollInterval time.Duration `yaml:"pollInterval"`
	MaxAttempts  int           `yaml:"maxAttempts"`
}

// SessionConfig holds the fallback cookies and where overrides are kept.
type SessionConfig struct {
	LeetCodeSession string `yaml:"leetcodeSession"`
	CSRFToken       string `yaml:"csrfToken"`
	RedisKey        string `yaml:"redisKey"`
}

// CacheConfig holds question id cache settings.
type CacheConfig struct {
	QuestionTTL time.Duration `yaml:"questionTTL"`
	LocalMax    int           `yaml:"localMax"`
}

// RedisSection wraps the Redis client config with an enable switch.
type RedisSection struct {
	Enabled           bool `yaml:"enabled"`
	cache.RedisConfig `yaml:",inline"`
}

// RateLimitConfig bounds submit traffic. Requires Redis.
type RateLimitConfig struct {
	Submit       commonmw.RateLimitPolicy `yaml:"submit"`
	RedisTimeout time.Duration            `yaml:"redisTimeout"`
}

// RunEventsConfig controls publishing of finished submission runs.
type RunEventsConfig struct {
	Enabled bool           `yaml:"enabled"`
	Topic   string         `yaml:"topic"`
	Kafka   mq.KafkaConfig `yaml:"kafka"`
}

// AppConfig holds the api-server configuration.
type AppConfig struct {
	Server     ServerConfig        `yaml:"server"`
	Logger     logger.Config       `yaml:"logger"`
	LeetCode   judgeclient.Config  `yaml:"leetcode"`
	Submission SubmissionConfig    `yaml:"submission"`
	Session    SessionConfig       `yaml:"session"`
	Cache      CacheConfig         `yaml:"cache"`
	Redis      RedisSection        `yaml:"redis"`
	RateLimit  RateLimitConfig     `yaml:"rateLimit"`
	RunEvents  RunEventsConfig     `yaml:"runEvents"`
	CORS       commonmw.CORSConfig `yaml:"cors"`
}

// FallbackCredential returns the cookies used when no override is stored.
func (c *AppConfig) FallbackCredential() model.Credential {
	return model.Credential{Session: c.Session.LeetCodeSession, CSRFToken: c.Session.CSRFToken}.Trimmed()
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// loadAppConfig reads the YAML file when present, then applies .env and
// environment overrides and defaults.
func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()
	applyEnvOverrides(&cfg, os.LookupEnv)

	if cfg.Redis.Enabled {
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis addr is required")
		}
		cfg.Redis.RedisConfig = cfg.Redis.RedisConfig.WithDefaults()
	}
	if cfg.RunEvents.Enabled && len(cfg.RunEvents.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required when run events are enabled")
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *AppConfig, lookup func(string) (string, bool)) {
	if v, ok := lookup("LEETCODE_SESSION"); ok {
		cfg.Session.LeetCodeSession = v
	}
	if v, ok := lookup("LEETCODE_CSRF_TOKEN"); ok {
		cfg.Session.CSRFToken = v
	}
	if v, ok := lookup("LEETCODE_USER_AGENT"); ok && strings.TrimSpace(v) != "" {
		cfg.LeetCode.UserAgent = strings.TrimSpace(v)
	}
	if v, ok := lookup("LEETCODE_BASE_URL"); ok && strings.TrimSpace(v) != "" {
		cfg.LeetCode.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup("FRONTEND_ORIGINS"); ok {
		cfg.CORS.Enabled = true
		cfg.CORS.AllowedOrigins = splitOrigins(v)
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	// A submit response must not be cut off while the workflow is still polling.
	if budget := cfg.submitBudget() + writeTimeoutMargin; cfg.Server.WriteTimeout < budget {
		cfg.Server.WriteTimeout = budget
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}

	if cfg.Session.RedisKey == "" {
		cfg.Session.RedisKey = defaultSessionKey
	}
	if cfg.Cache.QuestionTTL == 0 {
		cfg.Cache.QuestionTTL = defaultQuestionCacheTTL
	}
	if cfg.Cache.LocalMax <= 0 {
		cfg.Cache.LocalMax = defaultQuestionCacheMax
	}
	if cfg.RateLimit.Submit.Window == 0 {
		cfg.RateLimit.Submit.Window = defaultRateLimitWindow
	}
	if cfg.RunEvents.Topic == "" {
		cfg.RunEvents.Topic = defaultRunEventsTopic
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.Enabled = true
		cfg.CORS.AllowedOrigins = []string{defaultFrontendOrigin}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "X-Trace-Id", "X-Request-Id"}
	}
	if len(cfg.CORS.ExposedHeaders) == 0 {
		cfg.CORS.ExposedHeaders = []string{"X-Trace-Id", "X-Request-Id"}
	}
	cfg.CORS.AllowCredentials = true
}

// submitBudget is the longest a submit request can run: the question lookup,
// the submit call and every poll with its wait, each at its HTTP timeout.
func (c *AppConfig) submitBudget() time.Duration {
	judge := c.LeetCode.WithDefaults()
	interval, attempts := c.Submission.PollInterval, c.Submission.MaxAttempts
	if interval <= 0 {
		interval = service.DefaultPollInterval
	}
	if attempts <= 0 {
		attempts = service.DefaultMaxAttempts
	}
	perPoll := interval + judge.SubmitTimeout
	return judge.Timeout + judge.SubmitTimeout + time.Duration(attempts)*perPoll
}
