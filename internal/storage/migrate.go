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
var migrationsFS embed.FS

// SchemaVersion is the latest migration shipped in migrations/.
const SchemaVersion uint = 2

// ErrDirtySchema means a previous migration failed halfway and the records
// table must be repaired by hand before the bot can start.
var ErrDirtySchema = errors.New("records schema is dirty")

// RunMigrations brings the database at dbPath up to SchemaVersion and
// returns the version it ends at. Migrations use their own connection.
func RunMigrations(dbPath string) (uint, error) {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if v, dirty, err := m.Version(); err == nil && dirty {
		return v, fmt.Errorf("%w at version %d", ErrDirtySchema, v)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	v, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
