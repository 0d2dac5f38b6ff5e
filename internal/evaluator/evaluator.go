// Package evaluator turns source listings and reference comparables into
// arbitrage deals. Evaluation is pure: the same inputs always produce the same
// market value, fees, profit and ROI.
package evaluator

import (
	"arbitrage/pkg/domain"
	"arbitrage/pkg/serrors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNonEvaluable is returned for listings that cannot be priced: there are
// no comparables, or the listing price is zero so ROI is undefined.
var ErrNonEvaluable = serrors.NewKind("NON_EVALUABLE")

var hundred = decimal.NewFromInt(100) //nolint: gochecknoglobals

// FeeModel computes the transaction cost of buying at price on platform. It
// must be total and side-effect free.
type FeeModel interface {
	Fees(price decimal.Decimal, platform domain.Platform) decimal.Decimal
}

// FlatPercentFees charges Flat plus Percent of the price.
type FlatPercentFees struct {
	Flat    decimal.Decimal
	Percent decimal.Decimal
}

// Fees implements FeeModel.
func (f FlatPercentFees) Fees(price decimal.Decimal, _ domain.Platform) decimal.Decimal {
	return f.Flat.Add(price.Mul(f.Percent).Div(hundred))
}

// Median returns the median of prices. An even count yields the mean of the
// two middle values. prices is not modified.
func Median(prices []decimal.Decimal) (decimal.Decimal, bool) {
	if len(prices) == 0 {
		return decimal.Zero, false
	}

	sorted := slices.Clone(prices)
	slices.SortFunc(sorted, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}

	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2)), true
}

// Evaluator prices listings against their comparables.
type Evaluator struct {
	fees  FeeModel
	newID func() uuid.UUID
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithIDGenerator replaces uuid.New for deal IDs.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(e *Evaluator) { e.newID = fn }
}

// New creates an Evaluator. A nil fees model charges nothing.
func New(fees FeeModel, opts ...Option) *Evaluator {
	if fees == nil {
		fees = FlatPercentFees{}
	}
	e := &Evaluator{fees: fees, newID: uuid.New}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate computes the deal for listing. Negative ROI is a valid result.
func (e *Evaluator) Evaluate(
	listing domain.Listing,
	comps domain.ComparableSet,
	category string,
	now time.Time,
) (domain.ArbitrageDeal, error) {
	median, ok := Median(comps.Prices)
	if !ok {
		return domain.ArbitrageDeal{}, serrors.With(ErrNonEvaluable, "no comparables for %q", comps.SearchTerm)
	}
	if listing.Price.IsZero() {
		return domain.ArbitrageDeal{}, serrors.With(ErrNonEvaluable, "listing %q has zero price", listing.Title)
	}

	fees := e.fees.Fees(listing.Price, listing.Platform)
	profit := median.Sub(listing.Price).Sub(fees)

	return domain.ArbitrageDeal{
		ID:                   domain.DealID(e.newID()),
		Listing:              listing,
		EstimatedMarketValue: median,
		Fees:                 fees,
		ProfitAfterFees:      profit,
		ROI:                  profit.Div(listing.Price).Mul(hundred),
		Comparables:          len(comps.Prices),
		Category:             category,
		Timestamp:            now,
	}, nil
}

// Included reports whether deal passes the ROI threshold.
func Included(deal domain.ArbitrageDeal, minROI decimal.Decimal) bool {
	return deal.MeetsROI(minROI)
}

// Filter returns the deals passing minROI, preserving order.
func Filter(deals []domain.ArbitrageDeal, minROI decimal.Decimal) []domain.ArbitrageDeal {
	out := make([]domain.ArbitrageDeal, 0, len(deals))
	for _, d := range deals {
		if Included(d, minROI) {
			out = append(out, d)
		}
	}

	return out
}

// SortByROI orders deals by ROI, highest first. Equal ROIs keep their order.
func SortByROI(deals []domain.ArbitrageDeal) {
	slices.SortStableFunc(deals, func(a, b domain.ArbitrageDeal) int { return b.ROI.Cmp(a.ROI) })
}
