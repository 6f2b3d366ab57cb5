package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetlog/fleetlog/application/usecase/changerequest"
	"github.com/fleetlog/fleetlog/infrastructure/adapter/postgres"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
)

type clearOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Deleted    int64  `json:"deleted"`
}

func newClearProcessedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-processed",
		Short: "Delete every approved or rejected change request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			log := logger.NewStructuredLogger(logger.LoggerConfig{
				Level:       cfg.LogLevel,
				Format:      cfg.LogFormat,
				ServiceName: "fleetctl",
				Output:      cmd.ErrOrStderr(),
			})

			workflow := changerequest.NewChangeRequestUseCase(
				postgres.NewChangeRequestRepositoryAdapter(db),
				postgres.NewUserRepositoryAdapter(db),
				changerequest.Mutators{},
				log,
			)

			start := time.Now()
			res, err := workflow.ClearProcessed(cmd.Context())
			if err != nil {
				return err
			}

			return writeJSON(clearOutput{
				Command:    "clear-processed",
				DurationMS: time.Since(start).Milliseconds(),
				Deleted:    res.Deleted,
			})
		},
	}
}
