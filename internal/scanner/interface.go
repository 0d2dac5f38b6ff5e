package scanner

import (
	"arbitrage/pkg/domain"
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Request selects what a run scans. The zero value scans every configured
// category with the configured minimum ROI.
type Request struct {
	// Categories are configured category names. Empty means all.
	Categories []string `json:"categories,omitempty"`
	// MinROI overrides the configured threshold in percent.
	MinROI *decimal.Decimal `json:"minRoi,omitempty"`
}

// DealQuery selects deals across runs.
type DealQuery struct {
	// Since keeps deals evaluated at or after it. Zero keeps all.
	Since time.Time
	// MinROI overrides the configured threshold in percent.
	MinROI *decimal.Decimal
	// Category keeps one configured category. Empty keeps all.
	Category string
	// Limit caps the result size. Zero means no cap.
	Limit uint
}

//go:generate mockgen -package mockscanner -source=interface.go -destination=mock/mockscanner.go *
type Scanner interface {
	// RunScan executes one orchestration run and blocks until it finishes.
	// A concurrent call fails with serrors.ErrConflict.
	RunScan(ctx context.Context, req Request) (*domain.ScanResult, error)
	// Enqueue schedules a run on the background worker.
	Enqueue(ctx context.Context, req Request) (bool, error)
	// Busy reports whether a run is in progress.
	Busy() bool
	// Last returns the most recent finished run of this process, nil if none.
	Last() *domain.ScanResult
	// Result returns a stored run.
	Result(ctx context.Context, id domain.ScanID) (*domain.ScanResult, error)
	// Results returns a page of stored runs, newest first.
	Results(ctx context.Context, cursor string, limit uint) ([]domain.ScanResult, string, error)
	// LatestResult returns the last run of this process or, failing that, the
	// most recent stored run.
	LatestResult(ctx context.Context) (*domain.ScanResult, error)
	// Deals returns the best deals found by stored runs, or by the last run
	// when there is no storage, highest ROI first.
	Deals(ctx context.Context, q DealQuery) ([]domain.ArbitrageDeal, error)
}

// Window bounds the hours of the day in which runs may fetch anything.
type Window struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Allows reports whether now falls inside the window. StartHour is inclusive
// and EndHour exclusive. A window with StartHour > EndHour wraps around
// midnight and equal hours allow every hour.
func (w Window) Allows(now time.Time) bool {
	if w.StartHour == w.EndHour {
		return true
	}
	if w.Location != nil {
		now = now.In(w.Location)
	}

	h := now.Hour()
	if w.StartHour < w.EndHour {
		return h >= w.StartHour && h < w.EndHour
	}

	return h >= w.StartHour || h < w.EndHour
}
