// Package worker runs scheduled and enqueued scans on a River queue.
package worker

import (
	"arbitrage/internal/scanner"
	"arbitrage/pkg/logger"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Options configure the queue client.
type Options struct {
	// Interval is the period of scheduled scans. Zero disables scheduling.
	Interval time.Duration
	// RunOnStart schedules a scan as soon as the client starts.
	RunOnStart bool
	// JobTimeout bounds a single scan job.
	JobTimeout time.Duration
}

// PeriodicJobs returns the scheduled scan for opts, none when Interval is zero.
func PeriodicJobs(opts Options) []*river.PeriodicJob {
	if opts.Interval <= 0 {
		return nil
	}

	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(opts.Interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return scanner.NewJobArgs(scanner.Request{}, 1, 0), nil
			},
			&river.PeriodicJobOpts{RunOnStart: opts.RunOnStart},
		),
	}
}

// Start creates and starts a River client working scan jobs.
func Start(ctx context.Context, dbPool *pgxpool.Pool, s scanner.Scanner, opts Options) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewScanWorker(s, opts.JobTimeout))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			// runs are exclusive, a second worker would only hit the busy flag
			river.QueueDefault: {MaxWorkers: 1},
		},
		Workers:      workers,
		PeriodicJobs: PeriodicJobs(opts),
		Logger:       slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
