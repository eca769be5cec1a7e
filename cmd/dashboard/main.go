package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"driverdash/internal/amqp"
	"driverdash/internal/auth"
	"driverdash/internal/backend"
	"driverdash/internal/cache"
	"driverdash/internal/cli"
	"driverdash/internal/core"
	"driverdash/internal/dashboard"
	apphttp "driverdash/internal/http"
	applog "driverdash/internal/log"
	"driverdash/internal/services"
)

const loginEventBuffer = 256

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger(applog.ComponentApp, "info")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(applog.ComponentApp, cfg.LogLevel)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	creds, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize credential backend", err, applog.FieldBackend, backendCfg.Type)
	}

	// Login activity is optional; the dashboard works without a broker.
	var (
		publisher services.EventPublisher
		queue     *services.AsyncPublisher
	)
	amqpClient, err := cli.ConnectAMQP(logger.WithComponent(applog.ComponentAMQP), cfg)
	switch {
	case err != nil:
		logger.Warn("Login activity publishing disabled", applog.FieldError, err)
	case amqpClient != nil:
		queue = services.NewAsyncPublisher(amqpClient, loginEventBuffer)
		publisher = queue
	}

	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	var dashOpts []dashboard.Option
	if cfg.SeriesCacheSize > 0 {
		series := cache.NewLRUCache[[]core.DailyRecord](cfg.SeriesCacheSize, cfg.SeriesCacheTTL)
		cacheManager.Register(series)
		dashOpts = append(dashOpts, dashboard.WithSeriesCache(series))
	}
	cacheManager.StartCleanup(time.Minute)

	sessions, err := auth.NewSessionManager([]byte(cfg.SessionKey), cfg.SessionName, cfg.SessionMaxAge, cfg.SecureCookies,
		logger.WithComponent(applog.ComponentAuth).Logger)
	if err != nil {
		cli.Exit(logger, "Failed to initialize sessions", err)
	}

	opts := []apphttp.Option{
		apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP)),
		apphttp.WithReadiness(creds.Ready),
		apphttp.WithLoginRateLimit(cfg.LoginRateLimit),
	}
	if amqpClient != nil {
		opts = append(opts, apphttp.WithBrokerHealth(amqpClient.Healthy))
	}
	if cfg.ShowDemoCredentials && backendCfg.Type != backend.SheetsBackend {
		opts = append(opts, apphttp.WithDemoCredentials(auth.DemoCredentials))
	}
	srv := apphttp.NewServer(":"+cfg.Port,
		dashboard.NewService(dashOpts...),
		services.NewLoginService(creds.Verifier, publisher),
		sessions,
		opts...)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting driverdash server", "port", cfg.Port, applog.FieldBackend, backendCfg.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
	}

	cacheManager.Stop()
	if queue != nil {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := queue.Close(drainCtx); err != nil {
			logger.Warn("Dropped queued login events", applog.FieldError, err)
		}
		drainCancel()
	}
	closeAMQP(logger, amqpClient)
	if creds.Cleanup != nil {
		if err := creds.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}
	logger.Info("Server stopped gracefully")
}

func closeAMQP(logger *applog.Logger, c *amqp.Client) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("AMQP close failed", applog.FieldError, err)
	}
}
