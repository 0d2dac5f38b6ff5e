package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is the shape consumed by presentation collaborators (dashboard,
// API clients). Field names are part of that contract.
type Report struct {
	ID              ScanID              `json:"id"`
	Success         bool                `json:"success"`
	Timestamp       time.Time           `json:"timestamp"`
	ScanDuration    float64             `json:"scanDuration"`
	TotalDeals      int                 `json:"totalDeals"`
	DealsWithMinROI int                 `json:"dealsWithMinRoi"`
	MinROIFilter    decimal.Decimal     `json:"minRoiFilter"`
	Email           *NotificationResult `json:"email,omitempty"`
	Categories      []string            `json:"categories"`
	Outcomes        []CategoryOutcome   `json:"outcomes,omitempty"`
	Deals           []ArbitrageDeal     `json:"deals"`
	Error           string              `json:"error,omitempty"`
	Message         string              `json:"message,omitempty"`
	Skipped         bool                `json:"skipped,omitempty"`
}

// NewReport converts a finalized scan result into its presentation shape.
func NewReport(r *ScanResult) Report {
	deals := r.Deals
	if deals == nil {
		deals = []ArbitrageDeal{}
	}
	categories := r.Categories
	if categories == nil {
		categories = []string{}
	}

	rep := Report{
		ID:              r.ID,
		Success:         r.Success(),
		Timestamp:       r.FinishedAt,
		ScanDuration:    r.Duration().Round(time.Second).Seconds(),
		TotalDeals:      len(r.Deals),
		DealsWithMinROI: len(r.Filtered()),
		MinROIFilter:    r.MinROI,
		Email:           r.Notification,
		Categories:      categories,
		Outcomes:        r.Outcomes,
		Deals:           deals,
		Error:           r.Err,
		Skipped:         r.Skipped,
	}
	if rep.Timestamp.IsZero() {
		rep.Timestamp = r.StartedAt
	}

	switch {
	case r.Skipped:
		rep.Message = "scan skipped: outside operating window"
	case r.Canceled:
		rep.Message = "scan canceled: partial results"
	case len(r.FailedCategories()) > 0:
		rep.Message = "scan completed with failed categories"
	}

	return rep
}
