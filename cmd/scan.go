package main

import (
	"arbitrage/internal/config"
	"arbitrage/internal/scanner"
	"arbitrage/pkg/domain"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/money"
	"arbitrage/pkg/storage"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func scanCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Runs a single scan and prints the deals",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			categories, _ := cmd.Flags().GetStringSlice("category")
			req := scanner.Request{Categories: categories}
			if cmd.Flags().Changed("min-roi") {
				minROI, _ := cmd.Flags().GetFloat64("min-roi")
				d := decimal.NewFromFloat(minROI)
				req.MinROI = &d
			}

			var strg storage.Storage
			if cfg.Database.Enabled {
				pg, closeStrg := getPostgres(ctx, cfg)
				defer closeStrg()
				strg = pg
			}

			s, release := getScanner(ctx, cfg, strg, getMetrics(ctx))
			defer release()

			res, err := s.RunScan(ctx, req)
			if err != nil {
				logger.Fatal(ctx, "could not run scan", zap.Error(err))
			}

			printReport(os.Stdout, res)
		},
	}

	cmd.Flags().StringSlice("category", nil, "Configured categories to scan (default all)")
	cmd.Flags().Float64("min-roi", 0, "Minimum ROI in percent (default from config)")

	return cmd
}

// printReport renders the category outcomes and the deals meeting the ROI threshold.
func printReport(w io.Writer, res *domain.ScanResult) {
	rep := domain.NewReport(res)
	if rep.Message != "" {
		_, _ = fmt.Fprintln(w, rep.Message)
	}
	if rep.Error != "" {
		_, _ = fmt.Fprintln(w, "error:", rep.Error)
	}
	if res.Skipped {
		return
	}

	outcomes := table.NewWriter()
	outcomes.SetOutputMirror(w)
	outcomes.SetStyle(table.StyleLight)
	outcomes.AppendHeader(table.Row{"Category", "Status", "Strategy", "Listings", "Evaluated", "Discarded", "Non evaluable", "Deals", "Error"})
	for _, o := range res.Outcomes {
		outcomes.AppendRow(table.Row{o.Category, o.Status, o.Strategy, o.Listings, o.Evaluated, o.Discarded, o.NonEvaluable, o.Deals, o.Error})
	}
	outcomes.Render()

	deals := res.Filtered()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("%d of %d deals with ROI ≥ %s%%", len(deals), len(res.Deals), res.MinROI.String())
	t.AppendHeader(table.Row{"#", "Title", "Price", "Market value", "Fees", "Profit", "ROI", "Comps", "Category", "URL"})
	for i, d := range deals {
		t.AppendRow(table.Row{
			i + 1,
			text.Trim(d.Listing.Title, 40),
			money.Format(d.Listing.Price),
			money.Format(d.EstimatedMarketValue),
			money.Format(d.Fees),
			money.Format(d.ProfitAfterFees),
			d.ROI.StringFixed(1) + "%",
			d.Comparables,
			d.Category,
			d.Listing.URL,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}
