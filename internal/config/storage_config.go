package config

import "time"

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetDatabaseDSN() string
	GetPurgeInterval() time.Duration
	GetMaxConns() int32
}

type storageSettings struct {
	Driver        string        `koanf:"driver"`
	DSN           string        `koanf:"dsn"`
	PurgeInterval time.Duration `koanf:"purge_interval"`
	MaxConns      int32         `koanf:"max_conns"`
}

func (c *mainConfig) GetStorageDriver() string {
	return c.Storage.Driver
}

// GetDatabaseDSN prefers AUTH_DATABASE_DSN so credentials can stay out of files
func (c *mainConfig) GetDatabaseDSN() string {
	if c.secrets.databaseDSN != "" {
		return c.secrets.databaseDSN
	}
	return c.Storage.DSN
}

func (c *mainConfig) GetPurgeInterval() time.Duration {
	return c.Storage.PurgeInterval
}

func (c *mainConfig) GetMaxConns() int32 {
	return c.Storage.MaxConns
}

func knownDriver(driver string) bool {
	switch driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
		return true
	}
	return false
}
