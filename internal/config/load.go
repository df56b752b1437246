package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// RegisterFlags declares every config key as a flag. Flag defaults are the config defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("app.name", "Go Session Auth", "application name")
	fs.String("app.env", "DEV", "deployment environment, DEV enables console logging")
	fs.String("http.addr", ":8080", "HTTP listen address")
	fs.Duration("http.shutdown_timeout", 5*time.Second, "graceful shutdown timeout")
	fs.String("log.level", "info", "log level (trace, debug, info, warn, error)")

	fs.StringSlice("cors.allowed_origins", nil, "CORS allowed origins, * for any")
	fs.StringSlice("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE"}, "CORS allowed methods")
	fs.StringSlice("cors.allowed_headers", []string{"Content-Type", "Authorization"}, "CORS allowed headers")

	fs.String("token.algorithm", "HS512", "signing algorithm (HS256, HS384, HS512, RS256, ES256...)")
	fs.String("token.issuer", "", "iss claim stamped on and required of every token")
	fs.Duration("token.access_ttl", time.Hour, "access token lifetime")
	fs.Duration("token.refresh_ttl", 7*24*time.Hour, "refresh token lifetime")

	fs.String("storage.driver", DriverMemory, "storage driver (memory, sqlite, postgres)")
	fs.String("storage.dsn", "file:auth.db", "database DSN, AUTH_DATABASE_DSN takes precedence")
	fs.Duration("storage.purge_interval", time.Hour, "expired session purge interval")
	fs.Int32("storage.max_conns", 10, "postgres pool size")
}

// Load layers configuration: flag defaults, then the optional YAML file, then
// flags set on the command line. Secrets come from the environment and .env.
func Load(fs *pflag.FlagSet, configFile string) (Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	k := koanf.New(".")
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("[Load] read %s: %w", configFile, err)
		}
	}
	// Unchanged flags only fill keys the file did not set
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("[Load] flags: %w", err)
	}

	c := &mainConfig{}
	if err := k.UnmarshalWithConf("", c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("[Load] unmarshal: %w", err)
	}
	c.secrets = secretsFromEnv()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("[Load] invalid configuration: %w", err)
	}
	return c, nil
}

func (c *mainConfig) validate() error {
	var errs []error

	if c.Token.AccessTTL < time.Second || c.Token.RefreshTTL < time.Second {
		errs = append(errs, errors.New("token lifetimes must be at least one second"))
	} else if c.Token.RefreshTTL <= c.Token.AccessTTL {
		errs = append(errs, errors.New("token.refresh_ttl must be longer than token.access_ttl"))
	}

	algorithm := c.GetTokenAlgorithm()
	switch {
	case isHMAC(algorithm) && c.secrets.tokenSecret == "":
		errs = append(errs, fmt.Errorf("%s is required for %s", tokenSecretEnvVar, algorithm))
	case !isHMAC(algorithm) && c.secrets.privateKeyFile == "":
		errs = append(errs, fmt.Errorf("%s is required for %s", privateKeyFileEnvVar, algorithm))
	}

	if !knownDriver(c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	} else if c.Storage.Driver != DriverMemory && c.GetDatabaseDSN() == "" {
		errs = append(errs, fmt.Errorf("storage.dsn is required for %s", c.Storage.Driver))
	}
	if c.Storage.PurgeInterval <= 0 {
		errs = append(errs, errors.New("storage.purge_interval must be positive"))
	}

	return errors.Join(errs...)
}
