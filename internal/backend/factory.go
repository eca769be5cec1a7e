package backend

import (
	"context"
	"fmt"
	"log/slog"

	"driverdash/internal/auth"
	gsheet "driverdash/internal/sheets/google"
	"driverdash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return f.createMemoryBackend()
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SeedDemoDrivers {
		if _, err := repo.SeedDrivers(ctx, auth.DemoCredentials); err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed drivers: %w", err)
		}
	}

	f.logger.Info("Initialized SQLite credential backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Verifier: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		DriversSheet:       config.GoogleDriversSheet,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets credential backend", "sheet", config.GoogleDriversSheet)
	return &BackendResult{Verifier: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory credential backend", "drivers", len(auth.DemoCredentials))
	return &BackendResult{Verifier: auth.NewStaticTable(auth.DemoCredentials)}, nil
}
