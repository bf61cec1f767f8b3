package main

import (
	"trading-journal/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date and exit",
		Long: `Migrate creates missing tables and adds missing columns and indexes.
Existing columns and data are never altered or dropped, so it is safe to run
against a live database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.NewDatabase(&cfg.Database, log)
			if err != nil {
				log.Error("Failed to connect to database", zap.Error(err))
				return err
			}
			defer closeDatabase(db, log)

			if err := database.Migrate(db, log); err != nil {
				log.Error("Migration failed", zap.Error(err))
				return err
			}
			log.Info("Schema is up to date", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}
