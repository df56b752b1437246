package main

import (
	"context"

	"github.com/jrsteele09/go-session-auth/internal/config"
	"github.com/jrsteele09/go-session-auth/internal/database"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/jrsteele09/go-session-auth/sessions/pgstore"
	"github.com/jrsteele09/go-session-auth/sessions/sqlitestore"
	"github.com/jrsteele09/go-session-auth/users"
	"github.com/jrsteele09/go-session-auth/users/pgrepo"
	fakeuserrepo "github.com/jrsteele09/go-session-auth/users/repofake"
	"github.com/jrsteele09/go-session-auth/users/sqliterepo"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
)

// storage is the identity repository and session store for the configured driver
type storage struct {
	users    users.UserRepo
	sessions sessions.Store
	close    func()
}

func (s *storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// openStorage connects to the configured driver. SQL drivers are migrated first when migrateSchema is set.
func openStorage(ctx context.Context, cfg config.StorageConfig, migrateSchema bool) (*storage, error) {
	driver := cfg.GetStorageDriver()
	logger := log.With().Str("driver", driver).Logger()

	switch driver {
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory storage, principals and sessions are lost on restart")
		return &storage{
			users:    fakeuserrepo.NewFakeUserRepo(),
			sessions: sessions.NewMemoryStore(),
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.GetDatabaseDSN())
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("driver", driver).Wrap(err)
		}
		if migrateSchema {
			if err := database.MigrateSQLite(db); err != nil {
				_ = db.Close()
				return nil, oops.Code("MIGRATION_FAILED").With("driver", driver).Wrap(err)
			}
		}
		logger.Info().Msg("storage ready")
		return &storage{
			users:    sqliterepo.New(db),
			sessions: sqlitestore.New(db),
			close:    func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		if migrateSchema {
			if err := database.MigratePostgres(cfg.GetDatabaseDSN()); err != nil {
				return nil, oops.Code("MIGRATION_FAILED").With("driver", driver).Wrap(err)
			}
		}
		pool, err := database.NewPostgresPool(ctx, cfg.GetDatabaseDSN(), cfg.GetMaxConns())
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("driver", driver).Wrap(err)
		}
		logger.Info().Msg("storage ready")
		return &storage{
			users:    pgrepo.New(pool),
			sessions: pgstore.New(pool),
			close:    pool.Close,
		}, nil

	default:
		return nil, oops.Code("CONFIG_INVALID").Errorf("unknown storage driver %q", driver)
	}
}

// migrateStorage applies the schema for the configured SQL driver
func migrateStorage(ctx context.Context, cfg config.StorageConfig) error {
	if cfg.GetStorageDriver() == config.DriverMemory {
		log.Info().Msg("in-memory storage has no schema to migrate")
		return nil
	}
	store, err := openStorage(ctx, cfg, true)
	if err != nil {
		return err
	}
	store.Close()
	return nil
}
