package main

import (
	"arbitrage/internal/api"
	"arbitrage/internal/api/handler/v1handler"
	"arbitrage/internal/config"
	"arbitrage/internal/worker"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/storage"
	"arbitrage/pkg/storage/postgres"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"riverqueue.com/riverui"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// setupRiverUI starts the job queue dashboard served under api.RiverUIPrefix.
func setupRiverUI(ctx context.Context, client *river.Client[pgx.Tx]) http.Handler {
	handler, err := riverui.NewHandler(&riverui.HandlerOpts{
		Endpoints: riverui.NewEndpoints(client, nil),
		Logger:    slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
		Prefix:    api.RiverUIPrefix,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create river ui", zap.Error(err))
	}
	if err := handler.Start(ctx); err != nil {
		logger.Fatal(ctx, "could not start river ui", zap.Error(err))
	}

	return handler
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and the scan scheduler",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m := getMetrics(ctx)

			// without a database scans are neither stored nor queued and the
			// schedule runs in process
			var (
				strg storage.Storage
				pg   *postgres.PgSQL
			)
			if cfg.Database.Enabled {
				var closeStrg func()
				pg, closeStrg = getPostgres(ctx, cfg)
				defer closeStrg()
				strg = pg
			}

			s, release := getScanner(ctx, cfg, strg, m)
			defer release()

			deps := api.Deps{Deps: v1handler.Deps{Scanner: s}, Metrics: m}
			var riverClient *river.Client[pgx.Tx]
			if pg != nil {
				var err error
				riverClient, err = worker.Start(ctx, pg.Pool, s, worker.Options{
					Interval:   cfg.Scan.Interval,
					JobTimeout: worker.DefaultJobTimeout,
				})
				if err != nil {
					logger.Fatal(ctx, "could not start worker", zap.Error(err))
				}
				if cfg.HTTP.RiverUI {
					deps.RiverUI = setupRiverUI(ctx, riverClient)
				}
			} else if cfg.Scan.Interval > 0 {
				go worker.RunEvery(ctx, s, cfg.Scan.Interval)
			}

			stopWebserver := setupServer(ctx, cfg, deps)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			if riverClient != nil {
				logger.Info(shutdownCtx, "stopping worker...")
				if err := riverClient.Stop(shutdownCtx); err != nil {
					logger.Error(shutdownCtx, "could not stop worker", zap.Error(err))
				}
			}
		},
	}

	return cmd
}
