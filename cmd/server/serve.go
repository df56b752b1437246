package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-session-auth/auth"
	"github.com/jrsteele09/go-session-auth/internal/config"
	"github.com/jrsteele09/go-session-auth/server"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const readHeaderTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the expired session sweeper",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	displayAppname(cfg.GetAppName())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	codec, err := newCodec(cfg)
	if err != nil {
		return err
	}

	metrics := auth.NewMetrics(prometheus.DefaultRegisterer)
	service, err := auth.NewService(
		auth.Repos{Users: store.users, Sessions: store.sessions},
		codec,
		auth.WithTokenTTL(cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL()),
		auth.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	authenticator, err := server.NewRequestAuthenticator(codec, metrics)
	if err != nil {
		return err
	}
	handler, err := server.New(cfg, service, authenticator)
	if err != nil {
		return err
	}

	sweeper, err := sessions.NewSweeper(store.sessions, cfg.GetPurgeInterval())
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.GetAddr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(httpServer)
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(httpServer, cfg.GetShutdownTimeout())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// newCodec builds the credential codec from the token configuration
func newCodec(cfg config.TokenConfig) (*token.Codec, error) {
	privateKeyPEM, err := cfg.GetTokenPrivateKeyPEM()
	if err != nil {
		return nil, err
	}
	signer, err := token.NewSigner(cfg.GetTokenAlgorithm(), cfg.GetTokenSecret(), string(privateKeyPEM))
	if err != nil {
		return nil, err
	}
	return token.NewCodec(signer, token.WithIssuer(cfg.GetTokenIssuer()))
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
