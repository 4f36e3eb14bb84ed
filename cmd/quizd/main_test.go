package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
)

func TestRunReturnsSetupErrors(t *testing.T) {
	cfg := config.Config{
		Store:    config.StoreMemory,
		HTTPAddr: "127.0.0.1:0",
		BankPath: filepath.Join(t.TempDir(), "missing.yaml"),
	}
	if err := run(context.Background(), cfg, logger.Nop()); err == nil {
		t.Fatal("run with a missing bank should fail")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := config.Config{Store: config.StoreMemory, HTTPAddr: "127.0.0.1:0"}
	if err := run(ctx, cfg, logger.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}
}
