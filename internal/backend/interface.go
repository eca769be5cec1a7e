package backend

import (
	"context"

	"driverdash/internal/auth"
)

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the credential verifier and optional cleanup function
type BackendResult struct {
	Verifier auth.Verifier
	Cleanup  CleanupFunc
}

// Ready pings the verifier when it supports it.
func (r *BackendResult) Ready(ctx context.Context) error {
	if p, ok := r.Verifier.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory creates credential backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath    string
	SeedDemoDrivers bool

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleDriversSheet       string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
