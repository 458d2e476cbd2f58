package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lunchbudget/internal/config"
	"lunchbudget/internal/core"
	"lunchbudget/internal/log"
	"lunchbudget/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		TenbisAPIURL:       "http://127.0.0.1:1",
		TenbisTimeout:      time.Second,
		TimeZone:           "Asia/Jerusalem",
		DailyLunchBudget:   decimal.NewFromInt(40),
		MaxLunchLimit:      decimal.NewFromInt(150),
		LunchCutoffHour:    17,
		ParsePolicy:        "skip",
		CacheTTL:           time.Minute,
		RefreshConcurrency: 2,
	}
}

func TestBuildPipeline(t *testing.T) {
	logger := log.New(log.Config{Output: io.Discard})
	p, err := BuildPipeline(testConfig(), memory.New(), nil, logger)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if p.Reports == nil || p.Caches == nil {
		t.Fatal("pipeline not fully wired")
	}

	// Without a stored link the service must ask for one before any fetch.
	_, err = p.Reports.UpdateReport(context.Background(), "u1")
	var noLink *core.MissingAccountLinkError
	if !errors.As(err, &noLink) {
		t.Fatalf("UpdateReport error = %v, want MissingAccountLinkError", err)
	}
}

func TestBuildPipelineRejectsBadZone(t *testing.T) {
	cfg := testConfig()
	cfg.TimeZone = "Mars/Olympus"
	if _, err := BuildPipeline(cfg, memory.New(), nil, log.New(log.Config{Output: io.Discard})); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestSetupLoggerHonoursLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := SetupLogger("test")
	if logger.Component() != "test" {
		t.Errorf("component = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}
