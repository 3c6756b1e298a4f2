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

// RunMigrations applies all pending up migrations and returns the resulting
// schema version.
func RunMigrations(dbPath string) (uint, error) {
	m, closeDB, err := newMigrator(dbPath)
	if err != nil {
		return 0, err
	}
	defer closeDB()
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migration %d left the schema dirty", version)
	}
	return version, nil
}

// newMigrator uses its own connection so migration locking never touches
// the pool serving requests.
func newMigrator(dbPath string) (*migrate.Migrate, func(), error) {
	migrateDB, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, nil, fmt.Errorf("open migration database: %w", err)
	}
	closeDB := func() { migrateDB.Close() }

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, closeDB, nil
}
