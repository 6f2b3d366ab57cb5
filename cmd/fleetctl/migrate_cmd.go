package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/fleetlog/fleetlog/infrastructure/persistence/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	steps := []struct {
		use   string
		short string
		run   func(ctx context.Context, db *sql.DB) error
	}{
		{"up", "Apply all pending migrations", migrations.Up},
		{"down", "Roll back the latest migration", migrations.Down},
		{"status", "Show migration status", migrations.Status},
	}

	for _, step := range steps {
		cmd.AddCommand(&cobra.Command{
			Use:   step.use,
			Short: step.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, _, err := opts.openDB(cmd.Context())
				if err != nil {
					return err
				}
				defer db.Close()
				return step.run(cmd.Context(), db)
			},
		})
	}
	return cmd
}
