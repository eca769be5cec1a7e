package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"driverdash/internal/amqp"
	"driverdash/internal/auth"
)

// SQLiteRepository stores driver credentials and the login activity log.
type SQLiteRepository struct {
	db      *sql.DB
	version uint
}

var _ auth.Verifier = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	version, err := migrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db, version: version}, nil
}

// SchemaVersion is the migration version the database was left at on open.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.version
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Verify implements auth.Verifier against the drivers table.
func (r *SQLiteRepository) Verify(ctx context.Context, id, secret string) (auth.Driver, error) {
	var name, hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT name, password_hash FROM drivers WHERE id = ?`, id).Scan(&name, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Driver{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.Driver{}, fmt.Errorf("query driver: %w", err)
	}
	if !auth.MatchSecret(hash, secret) {
		return auth.Driver{}, auth.ErrInvalidCredentials
	}
	return auth.Driver{ID: id, Name: name}, nil
}

// UpsertDriver stores a driver with a bcrypt hash of secret.
func (r *SQLiteRepository) UpsertDriver(ctx context.Context, c auth.Credential) error {
	hash, err := auth.HashSecret(c.Secret)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drivers (id, name, password_hash) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, password_hash = excluded.password_hash`,
		c.ID, c.Name, hash)
	if err != nil {
		return fmt.Errorf("upsert driver %s: %w", c.ID, err)
	}
	return nil
}

// SeedDrivers inserts creds when the drivers table is empty and reports how
// many rows were written.
func (r *SQLiteRepository) SeedDrivers(ctx context.Context, creds []auth.Credential) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drivers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count drivers: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for _, c := range creds {
		if err := r.UpsertDriver(ctx, c); err != nil {
			return 0, err
		}
	}
	slog.InfoContext(ctx, "Seeded driver credentials", "count", len(creds))
	return len(creds), nil
}

// RecordLoginEvent appends an activity event. Replayed events are ignored.
func (r *SQLiteRepository) RecordLoginEvent(ctx context.Context, e amqp.LoginEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_events (id, driver_id, outcome, client_ip, occurred_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		e.ID.String(), e.DriverID, string(e.Outcome), e.ClientIP, e.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}

// CountLoginEvents returns how many events with outcome were recorded for a driver.
func (r *SQLiteRepository) CountLoginEvents(ctx context.Context, driverID string, outcome amqp.LoginOutcome) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM login_events WHERE driver_id = ? AND outcome = ?`,
		driverID, string(outcome)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count login events: %w", err)
	}
	return n, nil
}
