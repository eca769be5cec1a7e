package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"driverdash/internal/cli"
	"driverdash/internal/config"
	applog "driverdash/internal/log"
	"driverdash/internal/services"
	"driverdash/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger(applog.ComponentWorker, "info")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(applog.ComponentWorker, cfg.LogLevel)
	logger.Info("Starting activity-worker")

	if cfg.AMQPURL == "" {
		cli.Exit(logger, "activity-worker requires AMQP_URL", errors.New("AMQP not configured"))
	}

	// Events are persisted only alongside the SQLite credential backend.
	var recorder services.EventRecorder
	var repo *storage.SQLiteRepository
	if cfg.CredentialBackend == config.BackendSQLite {
		repo = cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		recorder = repo
		logger.Info("Recording login activity", "db_path", cfg.SQLiteDBPath)
	} else {
		logger.Info("Login activity is logged only", applog.FieldBackend, cfg.CredentialBackend)
	}

	client, err := cli.ConnectAMQP(logger.WithComponent(applog.ComponentAMQP), cfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	processor := services.NewActivityProcessor(recorder, logger.Logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.RunConsumer(gctx, processor.Handle)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}
