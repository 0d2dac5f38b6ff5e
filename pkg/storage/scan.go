package storage

import (
	"arbitrage/pkg/domain"
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ScanPage is one page of stored scan results, newest first.
type ScanPage struct {
	Scans []domain.ScanResult
	// NextCursor is the start time to pass for the next page. It is nil on the
	// last page.
	NextCursor *time.Time
}

// DealFilter selects stored deals.
type DealFilter struct {
	// Since keeps deals evaluated at or after it. Zero keeps all.
	Since time.Time
	// MinROI keeps deals whose ROI is at least MinROI.
	MinROI decimal.Decimal
	// Category keeps deals of one category. Empty keeps all.
	Category string
	// Limit caps the number of deals returned.
	Limit uint
}

// ReportStorage persists finished scan runs.
type ReportStorage interface {
	// StoreScan inserts a finished run. Storing the same ID twice overwrites
	// the previous payload.
	StoreScan(ctx context.Context, result domain.ScanResult) error
	// ScanByID returns the run with the given ID or nil when it does not exist.
	ScanByID(ctx context.Context, id domain.ScanID) (*domain.ScanResult, error)
	// LatestScan returns the most recently started run or nil when there is none.
	LatestScan(ctx context.Context) (*domain.ScanResult, error)
	// Scans returns runs started before cursor (all runs when cursor is zero),
	// newest first, at most limit of them.
	Scans(ctx context.Context, cursor time.Time, limit uint) (ScanPage, error)
	// Deals returns stored deals matching filter, highest ROI first. A listing
	// seen by several runs is returned once, from its latest evaluation.
	Deals(ctx context.Context, filter DealFilter) ([]domain.ArbitrageDeal, error)
}
