package worker

import (
	"arbitrage/internal/scanner"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/serrors"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// RunEvery runs a scan of every configured category each interval until ctx
// is done. It is the in-process schedule used when no queue is available.
// Ticks that find a scan already running are dropped.
func RunEvery(ctx context.Context, s scanner.Scanner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runScheduled(ctx, s)
		}
	}
}

func runScheduled(ctx context.Context, s scanner.Scanner) {
	res, err := s.RunScan(ctx, scanner.Request{})
	switch {
	case errors.Is(err, serrors.ErrConflict):
		logger.Info(ctx, "scheduled scan dropped, another scan is running")
	case err != nil:
		logger.Error(ctx, "scheduled scan failed", zap.Error(err))
	case res.Skipped:
		logger.Debug(ctx, "scheduled scan skipped outside of operating window")
	default:
		logger.Info(ctx, "scheduled scan finished",
			zap.Stringer("scanID", res.ID),
			zap.Int("deals", len(res.Deals)),
			zap.String("error", res.Err))
	}
}
