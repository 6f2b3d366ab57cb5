package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/fleetlog/fleetlog/infrastructure/bootstrap"
	"github.com/fleetlog/fleetlog/infrastructure/config"
)

type rootOptions struct {
	databaseURL string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "fleetctl",
		Short:        "Operational tools for the fleetlog service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "Postgres DSN (defaults to DATABASE_URL)")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newCreateAdminCmd(opts))
	cmd.AddCommand(newClearProcessedCmd(opts))
	return cmd
}

// loadConfig reads the environment and applies flag overrides. Only the
// database settings are required by fleetctl.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	if cfg.DatabaseURL == "" {
		return nil, config.ErrMissingDatabaseURL
	}
	cfg.StorageDriver = config.StorageDriverPostgres
	return cfg, nil
}

func (o *rootOptions) openDB(ctx context.Context) (*sql.DB, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := bootstrap.OpenDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
