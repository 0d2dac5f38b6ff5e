package main

import (
	"arbitrage"
	"arbitrage/internal/config"
	"arbitrage/pkg/logger"
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCommand constructs the 'migrate' subcommand. It applies the scan
// history migrations followed by the River queue schema.
func migrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Brings the database schema up to date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			pg, closePg := getPostgres(ctx, cfg)
			defer closePg()

			if err := pg.Migrate(ctx, arbitrage.Migrations, "migrations"); err != nil {
				return fmt.Errorf("could not migrate database: %w", err)
			}
			logger.Info(ctx, "database schema is up to date")

			return nil
		},
	}
}
