package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/go-session-auth/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// configureLogging sets the global level and writer. DEV gets a console writer, everything else JSON.
func configureLogging(cfg config.EnvConfig) error {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.GetLogLevel(), err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return nil
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
	return nil
}
