package main

import (
	"arbitrage/pkg/domain"
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPrintReport(t *testing.T) {
	res := &domain.ScanResult{
		MinROI:     decimal.NewFromInt(30),
		Categories: []string{"sneakers", "jackets"},
		Outcomes: []domain.CategoryOutcome{
			{Category: "sneakers", Status: domain.CategoryStatusOK, Strategy: "div.feed-grid__item", Listings: 2, Deals: 2},
			{Category: "jackets", Status: domain.CategoryStatusFailed, Error: "fetch www.vinted.de: status 500"},
		},
		Deals: []domain.ArbitrageDeal{
			{
				Listing:              domain.Listing{Title: "Nike Air Max 90", Price: decimal.NewFromInt(40), URL: "https://www.vinted.de/items/1"},
				EstimatedMarketValue: decimal.NewFromInt(100),
				ProfitAfterFees:      decimal.NewFromInt(55),
				Fees:                 decimal.NewFromInt(5),
				ROI:                  decimal.NewFromFloat(137.5),
				Comparables:          5,
				Category:             "sneakers",
			},
			{
				Listing:  domain.Listing{Title: "Adidas Samba", Price: decimal.NewFromInt(80), URL: "https://www.vinted.de/items/2"},
				ROI:      decimal.NewFromInt(10),
				Category: "sneakers",
			},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, res)
	out := buf.String()

	require.Contains(t, out, "scan completed with failed categories")
	require.Contains(t, out, "1 of 2 deals")
	require.Contains(t, out, "Nike Air Max 90")
	require.Contains(t, out, "137.5%")
	require.Contains(t, out, "40,00 €")
	require.NotContains(t, out, "Adidas Samba")
	require.Contains(t, out, "FAILED")
}

func TestPrintReport_Skipped(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &domain.ScanResult{Skipped: true})

	require.Equal(t, "scan skipped: outside operating window\n", buf.String())
}
