package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/infrastructure/config"
	"github.com/iho/orderledger/internal/infrastructure/eventpublisher"
)

func TestBuildOrderConfig(t *testing.T) {
	cfg := &config.Config{
		CommissionRate: decimal.RequireFromString("0.002"),
		MarketBuffer:   decimal.RequireFromString("0.1"),
	}

	orderCfg, err := buildOrderConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !orderCfg.CommissionRate.Equal(cfg.CommissionRate) || !orderCfg.MarketBuffer.Equal(cfg.MarketBuffer) {
		t.Fatalf("trading settings not applied: %+v", orderCfg)
	}
	if orderCfg.Calendar == nil {
		t.Fatalf("expected the default calendar")
	}
	if orderCfg.Now == nil {
		t.Fatalf("expected a clock")
	}
}

func TestBuildOrderConfigDefaultSessionIsNewYork(t *testing.T) {
	// an empty ZONEINFO must not stop the default session from resolving
	t.Setenv("ZONEINFO", t.TempDir())

	orderCfg, err := buildOrderConfig(&config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := orderCfg.Calendar.Location.String(); got != "America/New_York" {
		t.Fatalf("expected America/New_York, got %s", got)
	}
}

func TestBuildOrderConfigBadCalendar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	if err := os.WriteFile(path, []byte("open: \"25:00\"\nclose: \"16:00\"\n"), 0o600); err != nil {
		t.Fatalf("write calendar: %v", err)
	}

	if _, err := buildOrderConfig(&config.Config{CalendarFile: path}); err == nil {
		t.Fatalf("expected calendar error")
	}
}

func TestNewPublisherFallsBackToLog(t *testing.T) {
	publisher, closeFn, err := newPublisher(&config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	if _, ok := publisher.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher without brokers, got %T", publisher)
	}
}

func TestIgnoreCancel(t *testing.T) {
	if err := ignoreCancel(context.Canceled); err != nil {
		t.Fatalf("expected cancellation to be swallowed, got %v", err)
	}
	boom := errors.New("boom")
	if err := ignoreCancel(boom); !errors.Is(err, boom) {
		t.Fatalf("expected other errors to pass through, got %v", err)
	}
}
