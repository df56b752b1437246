package main

import (
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate subcommand
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured storage driver",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cmd.Println("Running migrations...")
	if err := migrateStorage(cmd.Context(), cfg); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

// NewPurgeCmd creates the purge subcommand
func NewPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired sessions once and exit",
		RunE:  runPurge,
	}
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStorage(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	purged, err := store.sessions.PurgeExpired(cmd.Context(), time.Now())
	if err != nil {
		return oops.Code("PURGE_FAILED").With("operation", "purge expired sessions").Wrap(err)
	}
	cmd.Printf("Purged %d expired sessions\n", purged)
	return nil
}
