package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScanID uniquely identifies a scan run.
// It wraps uuid.UUID to provide type safety at the domain layer.
type ScanID uuid.UUID

// String returns the canonical UUID representation.
func (id ScanID) String() string { return uuid.UUID(id).String() }

// MarshalText encodes the ID in its canonical UUID form.
func (id ScanID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText decodes a canonical UUID.
func (id *ScanID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// CategoryStatus is the outcome of scanning a single category.
type CategoryStatus string

const (
	// CategoryStatusOK indicates the category was scraped and evaluated.
	CategoryStatusOK CategoryStatus = "OK"
	// CategoryStatusFailed indicates the category scrape failed; see Error.
	CategoryStatusFailed CategoryStatus = "FAILED"
	// CategoryStatusCanceled indicates the run was aborted before the category was processed.
	CategoryStatusCanceled CategoryStatus = "CANCELED"
)

// CategoryOutcome records what happened to one category during a run.
type CategoryOutcome struct {
	Category   string         `json:"category"`
	SearchTerm string         `json:"searchTerm,omitempty"`
	Status     CategoryStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	// Strategy is the name of the extraction strategy that matched the catalog page.
	Strategy string `json:"strategy,omitempty"`
	// Listings is the number of valid listings scraped.
	Listings int `json:"listings"`
	// Evaluated is the number of listings considered for deals after the
	// per-category cap.
	Evaluated int `json:"evaluated"`
	// Discarded counts malformed candidates dropped by the scraper.
	Discarded int `json:"discarded"`
	// NonEvaluable counts listings skipped because no comparables were found.
	NonEvaluable int `json:"nonEvaluable"`
	// Deals is the number of deals produced for the category.
	Deals int `json:"deals"`
}

// ScanResult is the outcome of one orchestration run. It is created when the
// run starts and finalized before it is handed to notification, storage and
// presentation collaborators.
type ScanResult struct {
	ID         ScanID            `json:"id"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	MinROI     decimal.Decimal   `json:"minRoi"`
	Categories []string          `json:"categories"`
	Outcomes   []CategoryOutcome `json:"outcomes"`
	// Deals holds every evaluated deal, below-threshold ones included, ordered by ROI descending.
	Deals []ArbitrageDeal `json:"deals"`
	// Skipped is set when the run was invoked outside the operating window.
	Skipped bool `json:"skipped,omitempty"`
	// Canceled is set when the run was aborted between categories.
	Canceled bool `json:"canceled,omitempty"`
	// Err is the top-level error of the run, if any.
	Err string `json:"error,omitempty"`
	// Notification is the outcome of the notification step.
	Notification *NotificationResult `json:"notification,omitempty"`
}

// Duration returns how long the run took.
func (r *ScanResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}

// Success reports whether the run completed. Category failures do not affect
// success; a skipped run or a top-level error does.
func (r *ScanResult) Success() bool {
	return !r.Skipped && r.Err == ""
}

// Filtered returns the deals whose ROI meets the run's minimum ROI, in order.
func (r *ScanResult) Filtered() []ArbitrageDeal {
	out := make([]ArbitrageDeal, 0, len(r.Deals))
	for _, d := range r.Deals {
		if d.MeetsROI(r.MinROI) {
			out = append(out, d)
		}
	}

	return out
}

// FailedCategories returns the names of categories that failed.
func (r *ScanResult) FailedCategories() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == CategoryStatusFailed {
			out = append(out, o.Category)
		}
	}

	return out
}

// NotificationResult is what the notification collaborator reports back.
type NotificationResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	FilteredCount int    `json:"filteredCount"`
}
