package logger_test

import (
	"context"
	"path/filepath"
	"testing"

	"lcbridge/pkg/utils/contextkey"
	"lcbridge/pkg/utils/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFieldsAttached(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Use(logger.FromZap(zap.New(core)))
	t.Cleanup(func() { logger.Use(nil) })

	ctx := context.WithValue(context.Background(), contextkey.TraceID, "trace-1")
	ctx = context.WithValue(ctx, contextkey.RequestID, "req-1")
	logger.Info(ctx, "submitted", zap.String("slug", "two-sum"))
	logger.Debug(ctx, "dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "trace-1" || fields["request_id"] != "req-1" || fields["slug"] != "two-sum" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestLoggingWithoutInitIsSilent(t *testing.T) {
	logger.Use(nil)
	logger.Error(context.Background(), "nobody listening")
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := logger.NewLogger(logger.Config{Level: "loud"}); err == nil {
		t.Fatal("expected invalid level error")
	}
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := logger.NewLogger(logger.Config{Level: "debug", Format: "json", OutputPath: path, Service: "api"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Use(l)
	t.Cleanup(func() { logger.Use(nil) })
	logger.Info(context.Background(), "hello")
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}
