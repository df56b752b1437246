package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	StorageConfig
}

type EnvConfig interface {
	GetAddr() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetShutdownTimeout() time.Duration
	GetAdminEmail() string
	GetAdminPassword() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

// mainConfig is the unmarshal target for every koanf key, secrets are read from the environment.
type mainConfig struct {
	App     appSettings     `koanf:"app"`
	HTTP    httpSettings    `koanf:"http"`
	Log     logSettings     `koanf:"log"`
	Cors    corsSettings    `koanf:"cors"`
	Token   tokenSettings   `koanf:"token"`
	Storage storageSettings `koanf:"storage"`

	secrets secrets
}

var _ Config = (*mainConfig)(nil)

type appSettings struct {
	Name string `koanf:"name"`
	Env  string `koanf:"env"`
}

type httpSettings struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type logSettings struct {
	Level string `koanf:"level"`
}
