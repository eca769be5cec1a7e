package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

const schemaTable = "driverdash_schema"

// ErrDirtySchema means an earlier migration stopped partway. The database
// needs repair by hand before the dashboard can use it.
var ErrDirtySchema = errors.New("driver schema is dirty")

// migrateSchema brings the drivers and login activity tables up to date and
// returns the resulting schema version.
func migrateSchema(dbPath string) (uint, error) {
	m, err := openSchema(dbPath)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("upgrade schema: %w", err)
	}
	version, _, err = m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// openSchema pairs the embedded migrations with their own handle on dbPath.
// migrate closes that handle when the returned instance is closed.
func openSchema(dbPath string) (*migrate.Migrate, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open schema database: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: schemaTable})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema driver: %w", err)
	}
	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}
