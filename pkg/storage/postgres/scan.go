package postgres

import (
	"arbitrage/pkg/domain"
	"arbitrage/pkg/storage"
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	scanResultsTable = "scan_results"
	scanDealsTable   = "scan_deals"
)

// StoreScan upserts a finished scan run together with its deals. The run and
// its deals are written atomically; storing a run again replaces its deals.
func (p *PgSQL) StoreScan(ctx context.Context, result domain.ScanResult) error {
	var row PgScanResult
	if err := row.FromDomain(result); err != nil {
		return err
	}

	return p.inTx(ctx, func(tx *PgSQL) error {
		if err := tx.upsertScan(ctx, row); err != nil {
			return err
		}

		return tx.replaceDeals(ctx, result.ID, result.Deals)
	})
}

func (p *PgSQL) upsertScan(ctx context.Context, row PgScanResult) error {
	_, err := p.Builder.Insert(scanResultsTable).
		Rows(row).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"finished_at":    goqu.I("excluded.finished_at"),
			"success":        goqu.I("excluded.success"),
			"skipped":        goqu.I("excluded.skipped"),
			"canceled":       goqu.I("excluded.canceled"),
			"total_deals":    goqu.I("excluded.total_deals"),
			"filtered_deals": goqu.I("excluded.filtered_deals"),
			"min_roi":        goqu.I("excluded.min_roi"),
			"result":         goqu.I("excluded.result"),
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not store scan result into pg: %w", err)
	}

	return nil
}

func (p *PgSQL) replaceDeals(ctx context.Context, scanID domain.ScanID, deals []domain.ArbitrageDeal) error {
	_, err := p.Builder.Delete(scanDealsTable).
		Where(goqu.I("scan_id").Eq(uuid.UUID(scanID))).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not delete previous deals: %w", err)
	}
	if len(deals) == 0 {
		return nil
	}

	_, err = p.Builder.Insert(scanDealsTable).
		Rows(pgDealsFromDomain(scanID, deals)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not store deals into pg: %w", err)
	}

	return nil
}

// ScanByID returns a scan run by its ID.
func (p *PgSQL) ScanByID(ctx context.Context, id domain.ScanID) (*domain.ScanResult, error) {
	var row PgScanResult
	found, err := p.Builder.From(scanResultsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch scan result by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// LatestScan returns the most recently started run.
func (p *PgSQL) LatestScan(ctx context.Context) (*domain.ScanResult, error) {
	var row PgScanResult
	found, err := p.Builder.From(scanResultsTable).
		Order(goqu.I("started_at").Desc(), goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch latest scan result: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// Scans returns a page of runs ordered by started_at DESC, id DESC.
func (p *PgSQL) Scans(ctx context.Context, cursor time.Time, limit uint) (storage.ScanPage, error) {
	var w []goqu.Expression
	if !cursor.IsZero() {
		w = append(w, goqu.I("started_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	ds := p.Builder.From(scanResultsTable).
		Where(w...).
		Order(goqu.I("started_at").Desc(), goqu.I("id").Desc()).
		Limit(limit + 1)

	var rows []PgScanResult
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.ScanPage{}, fmt.Errorf("could not fetch scan results from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		nextCursor = &rows[len(rows)-1].StartedAt
	}

	scans, err := pgScanResultsToDomain(rows)
	if err != nil {
		return storage.ScanPage{}, err
	}

	return storage.ScanPage{Scans: scans, NextCursor: nextCursor}, nil
}

// Deals returns the latest evaluation of every stored listing that matches
// filter, ordered by ROI descending.
func (p *PgSQL) Deals(ctx context.Context, filter storage.DealFilter) ([]domain.ArbitrageDeal, error) {
	var w []goqu.Expression
	if !filter.Since.IsZero() {
		w = append(w, goqu.I("evaluated_at").Gte(filter.Since))
	}
	if filter.Category != "" {
		w = append(w, goqu.I("category").Eq(filter.Category))
	}

	latest := p.Builder.From(scanDealsTable).
		Distinct("url").
		Where(w...).
		Order(goqu.I("url").Asc(), goqu.I("evaluated_at").Desc())

	ds := p.Builder.From(latest.As("d")).
		Where(goqu.I("roi").Gte(filter.MinROI)).
		Order(goqu.I("roi").Desc(), goqu.I("evaluated_at").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(filter.Limit)
	}

	var rows []PgDeal
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch deals from pg: %w", err)
	}

	out := make([]domain.ArbitrageDeal, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}
