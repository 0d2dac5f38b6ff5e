// Command arbitrage scans a second-hand marketplace for listings that sell
// for more on a reference marketplace.
package main

import (
	"arbitrage/internal/config"
	"arbitrage/pkg/logger"
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand(cfg *config.Config) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "arbitrage",
		Short:         "Resale arbitrage scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded

			logger.Setup(cfg.Environment, cfg.LogLevel)

			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "path of the YAML config file")

	root.AddCommand(
		serveCommand(cfg),
		scanCommand(cfg),
		migrateCommand(cfg),
		JWTCommand(cfg),
	)

	return root
}

func main() {
	// reports carry prices and ROI as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "panic", zap.Any("panic", p), zap.Stack("stack"))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	err := newRootCommand(&config.Config{}).ExecuteContext(ctx)
	_ = logger.Get(ctx).Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1) //nolint: gocritic
	}
}
