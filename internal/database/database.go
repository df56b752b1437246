// Package database opens the SQL backends and applies the embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// OpenSQLite opens the SQLite database at path with WAL and a busy timeout
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite", path+sep+sqlitePragmas)
	if err != nil {
		return nil, oops.In("database").Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, oops.In("database").Code("SQLITE_PING_FAILED").With("path", path).Wrap(err)
	}
	return db, nil
}

// NewPostgresPool builds a pgx pool and validates connectivity. It does not run migrations.
func NewPostgresPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.In("database").Code("POSTGRES_CONFIG_INVALID").Wrap(err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.In("database").Code("POSTGRES_POOL_FAILED").Wrap(err)
	}

	if err := ping(ctx, pool, 3*time.Second); err != nil {
		pool.Close()
		return nil, oops.In("database").Code("POSTGRES_PING_FAILED").Wrap(err)
	}
	return pool, nil
}

func ping(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}
