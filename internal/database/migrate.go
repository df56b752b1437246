package database

import (
	"database/sql"
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the pgx5:// database driver.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

//go:embed migrations
var migrationsFS embed.FS

// MigratePostgres applies pending migrations to the database at dsn.
// postgres:// and postgresql:// are rewritten to the pgx5:// scheme.
func MigratePostgres(dsn string) error {
	source, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return oops.In("database").Code("MIGRATION_SOURCE_FAILED").Wrap(err)
	}

	migrateURL := dsn
	if rest, found := strings.CutPrefix(dsn, "postgres://"); found {
		migrateURL = "pgx5://" + rest
	} else if rest, found := strings.CutPrefix(dsn, "postgresql://"); found {
		migrateURL = "pgx5://" + rest
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL)
	if err != nil {
		_ = source.Close()
		return oops.In("database").Code("MIGRATION_INIT_FAILED").Wrap(err)
	}
	defer m.Close()

	return up(m)
}

// MigrateSQLite applies pending migrations through an already open handle.
// The migrator is not closed because that would close db.
func MigrateSQLite(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return oops.In("database").Code("MIGRATION_SOURCE_FAILED").Wrap(err)
	}
	defer source.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return oops.In("database").Code("MIGRATION_INIT_FAILED").Wrap(err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return oops.In("database").Code("MIGRATION_INIT_FAILED").Wrap(err)
	}

	return up(m)
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.In("database").Code("MIGRATION_UP_FAILED").Wrap(err)
	}
	return nil
}
