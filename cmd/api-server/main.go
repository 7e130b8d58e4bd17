package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lcbridge/internal/assist/controller"
	"lcbridge/internal/assist/judgeclient"
	"lcbridge/internal/assist/repository"
	"lcbridge/internal/assist/service"
	"lcbridge/internal/common/cache"
	commonmw "lcbridge/internal/common/http/middleware"
	"lcbridge/internal/common/mq"
	"lcbridge/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/api-server.yaml"

type services struct {
	problems    *service.ProblemService
	references  *service.ReferenceService
	sessions    *service.SessionService
	submissions *service.SubmissionService
	limiter     commonmw.Limiter
	readiness   map[string]controller.Pinger
}

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	deps := services{readiness: map[string]controller.Pinger{}}

	var (
		cacheClient cache.Cache
		store       repository.CredentialStore
	)
	fallback := appCfg.FallbackCredential()
	if appCfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCacheWithConfig(appCfg.Redis.RedisConfig)
		if err != nil {
			logger.Error(context.Background(), "init redis failed", zap.Error(err))
			return
		}
		defer func() {
			_ = redisCache.Close()
		}()
		cacheClient = redisCache
		deps.readiness["redis"] = redisCache
		store = repository.NewRedisCredentialStore(redisCache, appCfg.Session.RedisKey, fallback)
		deps.limiter = service.NewRateLimitService(redisCache, appCfg.RateLimit.Submit.Window, appCfg.RateLimit.RedisTimeout)
	} else {
		store = repository.NewMemoryCredentialStore(fallback)
	}

	var events repository.RunEventPublisher
	if appCfg.RunEvents.Enabled {
		producer, err := mq.NewKafkaProducer(appCfg.RunEvents.Kafka)
		if err != nil {
			logger.Error(context.Background(), "init kafka failed", zap.Error(err))
			return
		}
		defer func() {
			_ = producer.Close()
		}()
		deps.readiness["kafka"] = producer
		events = repository.NewMQRunEventPublisher(producer, appCfg.RunEvents.Topic)
	}

	judge := judgeclient.New(appCfg.LeetCode, store)

	var questionCache cache.BasicOps
	if cacheClient != nil {
		questionCache = cacheClient
	}
	questionRepo := repository.NewQuestionIDRepository(
		repository.NewLRU[string, string](appCfg.Cache.LocalMax, appCfg.Cache.QuestionTTL),
		questionCache,
		appCfg.Cache.QuestionTTL,
	)

	deps.submissions, err = service.NewSubmissionService(service.SubmissionConfig{
		Questions:    service.NewQuestionResolver(questionRepo, judge),
		Judge:        judge,
		Credentials:  store,
		Events:       events,
		PollInterval: appCfg.Submission.PollInterval,
		MaxAttempts:  appCfg.Submission.MaxAttempts,
	})
	if err != nil {
		logger.Error(context.Background(), "init submission service failed", zap.Error(err))
		return
	}
	deps.problems = service.NewProblemService(judge)
	deps.references = service.NewReferenceService(judge, nil, judge.BaseURL())
	deps.sessions = service.NewSessionService(store)

	httpServer := buildHTTPServer(appCfg, deps)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "api http server started",
			zap.String("addr", appCfg.Server.Addr),
			zap.String("leetcode", judge.BaseURL()),
			zap.Bool("redis", appCfg.Redis.Enabled),
			zap.Bool("run_events", appCfg.RunEvents.Enabled),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg *AppConfig, deps services) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      buildRouter(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func buildRouter(cfg *AppConfig, deps services) *gin.Engine {
	router := gin.New()
	router.Use(commonmw.Recovery())
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(commonmw.RequestLogger())
	router.Use(commonmw.CORSMiddleware(cfg.CORS))

	health := controller.NewHealthController(deps.readiness)
	router.GET("/health", health.Health)
	router.GET("/readyz", health.Ready)

	problemController := controller.NewProblemController(deps.problems)
	referenceController := controller.NewReferenceController(deps.references)
	sessionController := controller.NewSessionController(deps.sessions)
	submissionController := controller.NewSubmissionController(deps.submissions)

	api := router.Group("/api")
	api.GET("/potd", problemController.DailyChallenge)
	api.GET("/references", referenceController.Get)

	lc := api.Group("/leetcode")
	lc.GET("/session", sessionController.Get)
	lc.POST("/session", sessionController.Set)
	lc.DELETE("/session", sessionController.Clear)
	lc.GET("/submissions", problemController.Submissions)
	lc.POST("/submit",
		commonmw.RateLimitMiddleware(deps.limiter, "submit", cfg.RateLimit.Submit, defaultRateLimitWindow),
		submissionController.Submit,
	)

	return router
}
