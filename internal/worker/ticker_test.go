package worker_test

import (
	"arbitrage/internal/scanner"
	mockscanner "arbitrage/internal/scanner/mock"
	"arbitrage/internal/worker"
	"arbitrage/pkg/domain"
	"arbitrage/pkg/serrors"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRunEvery(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mockscanner.NewMockScanner(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	mock.EXPECT().RunScan(gomock.Any(), scanner.Request{}).
		DoAndReturn(func(context.Context, scanner.Request) (*domain.ScanResult, error) {
			switch calls.Add(1) {
			case 1:
				return nil, serrors.With(serrors.ErrConflict, "scan already running")
			case 2:
				return &domain.ScanResult{Skipped: true}, nil
			default:
				cancel()

				return &domain.ScanResult{}, nil
			}
		}).MinTimes(3)

	done := make(chan struct{})
	go func() {
		worker.RunEvery(ctx, mock, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RunEvery did not return after cancellation")
	}
	require.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestRunEvery_StopsWhenCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mockscanner.NewMockScanner(ctrl)
	mock.EXPECT().RunScan(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker.RunEvery(ctx, mock, time.Hour)
}
