package postgres

import (
	"arbitrage/pkg/domain"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PgScanResult is a row of the scan_results table. Summary columns are
// denormalized from the JSON payload for listing and filtering.
type PgScanResult struct {
	ID         uuid.UUID `db:"id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`

	Success       bool            `db:"success"`
	Skipped       bool            `db:"skipped"`
	Canceled      bool            `db:"canceled"`
	TotalDeals    int             `db:"total_deals"`
	FilteredDeals int             `db:"filtered_deals"`
	MinROI        decimal.Decimal `db:"min_roi"`
	Result        json.RawMessage `db:"result"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgScanResult) ToDomain() (*domain.ScanResult, error) {
	var result domain.ScanResult
	if err := json.Unmarshal(p.Result, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal scan result: %w", err)
	}
	result.ID = domain.ScanID(p.ID)

	return &result, nil
}

func (p *PgScanResult) FromDomain(result domain.ScanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal scan result: %w", err)
	}

	*p = PgScanResult{
		ID:            uuid.UUID(result.ID),
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		Success:       result.Success(),
		Skipped:       result.Skipped,
		Canceled:      result.Canceled,
		TotalDeals:    len(result.Deals),
		FilteredDeals: len(result.Filtered()),
		MinROI:        result.MinROI,
		Result:        payload,
	}

	return nil
}

func pgScanResultsToDomain(rows []PgScanResult) ([]domain.ScanResult, error) {
	out := make([]domain.ScanResult, 0, len(rows))
	for _, row := range rows {
		d, err := row.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}

// PgDeal is a row of the scan_deals table.
type PgDeal struct {
	ID          uuid.UUID       `db:"id"`
	ScanID      uuid.UUID       `db:"scan_id"`
	Category    string          `db:"category"`
	Title       string          `db:"title"`
	URL         string          `db:"url"`
	ImageURL    string          `db:"image_url"`
	Condition   string          `db:"condition"`
	Price       decimal.Decimal `db:"price"`
	MarketValue decimal.Decimal `db:"market_value"`
	Fees        decimal.Decimal `db:"fees"`
	Profit      decimal.Decimal `db:"profit"`
	ROI         decimal.Decimal `db:"roi"`
	Comparables int             `db:"comparables"`
	EvaluatedAt time.Time       `db:"evaluated_at"`
}

func (p *PgDeal) ToDomain() domain.ArbitrageDeal {
	return domain.ArbitrageDeal{
		ID: domain.DealID(p.ID),
		Listing: domain.Listing{
			Title:     p.Title,
			Price:     p.Price,
			URL:       p.URL,
			ImageURL:  p.ImageURL,
			Condition: domain.Condition(p.Condition),
			Platform:  domain.PlatformSource,
		},
		EstimatedMarketValue: p.MarketValue,
		Fees:                 p.Fees,
		ProfitAfterFees:      p.Profit,
		ROI:                  p.ROI,
		Comparables:          p.Comparables,
		Category:             p.Category,
		Timestamp:            p.EvaluatedAt,
	}
}

func pgDealsFromDomain(scanID domain.ScanID, deals []domain.ArbitrageDeal) []PgDeal {
	out := make([]PgDeal, 0, len(deals))
	for _, d := range deals {
		out = append(out, PgDeal{
			ID:          uuid.UUID(d.ID),
			ScanID:      uuid.UUID(scanID),
			Category:    d.Category,
			Title:       d.Listing.Title,
			URL:         d.Listing.URL,
			ImageURL:    d.Listing.ImageURL,
			Condition:   string(d.Listing.Condition),
			Price:       d.Listing.Price,
			MarketValue: d.EstimatedMarketValue,
			Fees:        d.Fees,
			Profit:      d.ProfitAfterFees,
			ROI:         d.ROI,
			Comparables: d.Comparables,
			EvaluatedAt: d.Timestamp,
		})
	}

	return out
}
