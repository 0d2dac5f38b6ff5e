package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealID uniquely identifies an evaluated deal.
type DealID uuid.UUID

// MarshalText encodes the ID in its canonical UUID form.
func (id DealID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText decodes a canonical UUID.
func (id *DealID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ArbitrageDeal is a source listing paired with its evaluation. Deals are
// values: re-evaluating a listing produces a new deal.
type ArbitrageDeal struct {
	ID DealID `json:"id"`
	// Listing is the evaluated source listing.
	Listing Listing `json:"listing"`
	// EstimatedMarketValue is the median of the reference comparables.
	EstimatedMarketValue decimal.Decimal `json:"estimatedMarketValue"`
	// Fees is the fee model output for the listing price.
	Fees decimal.Decimal `json:"fees"`
	// ProfitAfterFees is EstimatedMarketValue - price - fees.
	ProfitAfterFees decimal.Decimal `json:"profitAfterFees"`
	// ROI is ProfitAfterFees / price * 100.
	ROI decimal.Decimal `json:"roi"`
	// Comparables is the number of reference prices the market value is based on.
	Comparables int `json:"comparables"`
	// Category is the configured category the listing was found in.
	Category string `json:"category"`
	// Timestamp is the evaluation time.
	Timestamp time.Time `json:"timestamp"`
}

// MeetsROI reports whether the deal's ROI is at least minROI.
func (d ArbitrageDeal) MeetsROI(minROI decimal.Decimal) bool {
	return d.ROI.GreaterThanOrEqual(minROI)
}
