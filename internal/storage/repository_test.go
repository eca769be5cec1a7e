package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"driverdash/internal/amqp"
	"driverdash/internal/auth"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "drivers.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryVerify(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.SeedDrivers(ctx, auth.DemoCredentials)
	if err != nil {
		t.Fatalf("SeedDrivers: %v", err)
	}
	if n != len(auth.DemoCredentials) {
		t.Fatalf("seeded %d drivers, want %d", n, len(auth.DemoCredentials))
	}
	if n, _ := repo.SeedDrivers(ctx, auth.DemoCredentials); n != 0 {
		t.Fatalf("expected second seed to be a no-op, wrote %d", n)
	}

	d, err := repo.Verify(ctx, "driver002", "sarah456")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if d.Name != "Sarah Johnson" {
		t.Fatalf("unexpected driver %+v", d)
	}

	for _, tc := range []struct{ id, secret string }{
		{"driver002", "wrong"},
		{"nobody", "sarah456"},
	} {
		if _, err := repo.Verify(ctx, tc.id, tc.secret); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("Verify(%s): expected ErrInvalidCredentials, got %v", tc.id, err)
		}
	}
}

func TestSQLiteRepositoryUpsertDriver(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertDriver(ctx, auth.Credential{ID: "driver010", Secret: "old", Name: "Old Name"}); err != nil {
		t.Fatalf("UpsertDriver: %v", err)
	}
	if err := repo.UpsertDriver(ctx, auth.Credential{ID: "driver010", Secret: "new", Name: "New Name"}); err != nil {
		t.Fatalf("UpsertDriver: %v", err)
	}
	if _, err := repo.Verify(ctx, "driver010", "old"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	d, err := repo.Verify(ctx, "driver010", "new")
	if err != nil || d.Name != "New Name" {
		t.Fatalf("Verify after update: %+v, %v", d, err)
	}
}

func TestSQLiteRepositoryLoginEvents(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ev := amqp.LoginEvent{
		ID:        uuid.New(),
		DriverID:  "driver001",
		Outcome:   amqp.OutcomeSuccess,
		ClientIP:  "10.0.0.1",
		Timestamp: time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC),
	}
	for range 2 {
		if err := repo.RecordLoginEvent(ctx, ev); err != nil {
			t.Fatalf("RecordLoginEvent: %v", err)
		}
	}
	failed := ev
	failed.ID = uuid.New()
	failed.Outcome = amqp.OutcomeFailure
	if err := repo.RecordLoginEvent(ctx, failed); err != nil {
		t.Fatalf("RecordLoginEvent: %v", err)
	}

	if n, err := repo.CountLoginEvents(ctx, "driver001", amqp.OutcomeSuccess); err != nil || n != 1 {
		t.Fatalf("success count %d, %v", n, err)
	}
	if n, err := repo.CountLoginEvents(ctx, "driver001", amqp.OutcomeFailure); err != nil || n != 1 {
		t.Fatalf("failure count %d, %v", n, err)
	}
}

func TestSQLiteRepositorySchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if v := repo.SchemaVersion(); v != 2 {
		t.Fatalf("SchemaVersion = %d, want 2", v)
	}
	repo.Close()

	// Reopening an up-to-date database keeps its version.
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v := repo.SchemaVersion(); v != 2 {
		t.Fatalf("SchemaVersion after reopen = %d, want 2", v)
	}
	repo.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`UPDATE ` + schemaTable + ` SET dirty = 1`); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}
	db.Close()

	if _, err := NewSQLiteRepository(path); !errors.Is(err, ErrDirtySchema) {
		t.Fatalf("expected ErrDirtySchema, got %v", err)
	}
}
