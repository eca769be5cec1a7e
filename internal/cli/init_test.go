package cli

import (
	"context"
	"log/slog"
	"testing"

	"driverdash/internal/config"
	applog "driverdash/internal/log"
)

func TestSetupLoggerFallsBackToInfo(t *testing.T) {
	logger := SetupLogger(applog.ComponentWorker, "verbose")
	if logger.Component() != applog.ComponentWorker {
		t.Fatalf("component %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be enabled")
	}
}

func TestConnectAMQPDisabled(t *testing.T) {
	logger := SetupLogger(applog.ComponentApp, "error")
	client, err := ConnectAMQP(logger, &config.Config{})
	if err != nil || client != nil {
		t.Fatalf("expected no client without AMQP_URL, got %v %v", client, err)
	}
}
