// Package cli provides common CLI initialization utilities shared by
// cmd/dashboard and cmd/activity-worker.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"driverdash/internal/amqp"
	"driverdash/internal/config"
	applog "driverdash/internal/log"
	"driverdash/internal/storage"
)

// SetupLogger initializes structured logging for component and makes it the
// default logger. An invalid level falls back to info.
func SetupLogger(component, level string) *applog.Logger {
	lvl, err := config.ParseLevel(level)
	lc := applog.DefaultConfig()
	lc.Level, lc.Component = lvl, component
	logger := applog.New(lc)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Invalid LOG_LEVEL, using info", applog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	logger.Info("SQLite repository ready", "path", dbPath, "schema_version", repo.SchemaVersion())
	return repo
}

// ConnectAMQP connects to the broker configured in cfg. It returns nil and no
// error when AMQP is not configured.
func ConnectAMQP(logger *applog.Logger, cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	logger.Info("AMQP client connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Exit logs err and terminates the process with status 1.
func Exit(logger *applog.Logger, msg string, err error, args ...any) {
	logger.Log(context.Background(), slog.LevelError, msg, append([]any{applog.FieldError, err}, args...)...)
	os.Exit(1)
}
