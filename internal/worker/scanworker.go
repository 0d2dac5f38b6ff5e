package worker

import (
	"arbitrage/internal/scanner"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/serrors"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// DefaultJobTimeout bounds a scan job when no timeout is configured.
const DefaultJobTimeout = 30 * time.Minute

// ScanWorker is a River worker that executes scan runs.
//
// A run that collides with another one in progress is canceled rather than
// retried: the running scan already covers it. Requests the scanner rejects
// as invalid are canceled too. A run outside the operating window completes
// normally with a skipped result.
type ScanWorker struct {
	river.WorkerDefaults[scanner.JobArgs]

	scanner scanner.Scanner
	timeout time.Duration
}

// NewScanWorker constructs a ScanWorker. A zero timeout uses DefaultJobTimeout.
func NewScanWorker(s scanner.Scanner, timeout time.Duration) *ScanWorker {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	return &ScanWorker{scanner: s, timeout: timeout}
}

// Timeout overrides River's default job timeout, which is far too short for a scan.
func (w *ScanWorker) Timeout(*river.Job[scanner.JobArgs]) time.Duration { return w.timeout }

// Work executes a single scan job and maps its outcome to River actions.
func (w *ScanWorker) Work(ctx context.Context, job *river.Job[scanner.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.Strings("categories", job.Args.Categories))

	res, err := w.scanner.RunScan(ctx, job.Args.Request)
	if err != nil {
		if errors.Is(err, serrors.ErrConflict) || errors.Is(err, serrors.ErrBadRequest) {
			logger.Warn(ctx, "scan job canceled", zap.Error(err))

			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error in scan job", zap.Error(err))

		return fmt.Errorf("could not run scan: %w", err)
	}

	switch {
	case res.Skipped:
		logger.Info(ctx, "scan job skipped outside of operating window")
	case res.Canceled:
		return fmt.Errorf("scan interrupted: %s", res.Err)
	case res.Err != "":
		return river.JobCancel(errors.New(res.Err)) //nolint: wrapcheck
	default:
		logger.Info(ctx, "scan job finished",
			zap.Stringer("scanID", res.ID),
			zap.Int("deals", len(res.Deals)),
			zap.Int("filtered", len(res.Filtered())))
	}

	return nil
}
