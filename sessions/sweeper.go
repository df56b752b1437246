package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically purges expired records. Lookups check expiry on their
// own, the sweep only keeps storage from growing.
type Sweeper struct {
	store    Store
	interval time.Duration
	nowFunc  func() time.Time
	logger   zerolog.Logger
}

type SweeperOption func(*Sweeper)

func WithSweeperNowFunc(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.nowFunc = now
	}
}

func WithSweeperLogger(logger zerolog.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func NewSweeper(store Store, interval time.Duration, options ...SweeperOption) (*Sweeper, error) {
	if store == nil {
		return nil, errors.New("[NewSweeper] store is required")
	}
	if interval <= 0 {
		return nil, errors.New("[NewSweeper] interval must be positive")
	}

	s := &Sweeper{
		store:    store,
		interval: interval,
		nowFunc:  time.Now,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Run sweeps every interval until ctx is done. Sweep failures are logged, not returned.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("session sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session sweeper stopped")
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one purge and returns the number of removed records
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	purged, err := s.store.PurgeExpired(ctx, s.nowFunc())
	if err != nil {
		s.logger.Error().Err(err).Msg("purge expired sessions")
		return 0
	}
	if purged > 0 {
		s.logger.Info().Int64("purged", purged).Msg("purged expired sessions")
	}
	return purged
}
