package config

import (
	"os"
	"strings"
	"time"
)

// Secrets never live in config files or flags
const (
	tokenSecretEnvVar    = "AUTH_TOKEN_SECRET"
	privateKeyFileEnvVar = "AUTH_TOKEN_PRIVATE_KEY_FILE"
	databaseDSNEnvVar    = "AUTH_DATABASE_DSN"
	adminEmailEnvVar     = "AUTH_ADMIN_EMAIL"
	adminPasswordEnvVar  = "AUTH_ADMIN_PASSWORD"
)

type secrets struct {
	tokenSecret    string
	privateKeyFile string
	databaseDSN    string
	adminEmail     string
	adminPassword  string
}

func secretsFromEnv() secrets {
	return secrets{
		tokenSecret:    GetEnv(tokenSecretEnvVar, ""),
		privateKeyFile: GetEnv(privateKeyFileEnvVar, ""),
		databaseDSN:    GetEnv(databaseDSNEnvVar, ""),
		adminEmail:     GetEnv(adminEmailEnvVar, ""),
		adminPassword:  GetEnv(adminPasswordEnvVar, ""),
	}
}

func (c *mainConfig) GetAddr() string {
	return c.HTTP.Addr
}

func (c *mainConfig) GetAppName() string {
	return c.App.Name
}

// GetEnv returns the deployment environment, upper case. DEV enables console logging and route listing.
func (c *mainConfig) GetEnv() string {
	if c.App.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(c.App.Env)
}

func (c *mainConfig) GetLogLevel() string {
	return c.Log.Level
}

func (c *mainConfig) GetShutdownTimeout() time.Duration {
	return c.HTTP.ShutdownTimeout
}

func (c *mainConfig) GetAdminEmail() string {
	return c.secrets.adminEmail
}

func (c *mainConfig) GetAdminPassword() string {
	return c.secrets.adminPassword
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
