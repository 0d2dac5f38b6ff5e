// Package metrics holds the OpenTelemetry instruments recorded by the scan
// pipeline and the Prometheus-backed meter provider that exports them.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300} //nolint: gochecknoglobals

const meterName = "arbitrage"

// NewProvider returns a meter provider whose readings are exported through
// registerer (prometheus.DefaultRegisterer when nil).
func NewProvider(registerer prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	exp, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Metrics groups the instruments of the fetch layer and the scan orchestrator.
type Metrics struct {
	fetchRequests    metric.Int64Counter
	fetchDuration    metric.Float64Histogram
	scanRuns         metric.Int64Counter
	scanDuration     metric.Float64Histogram
	deals            metric.Int64Counter
	categoryFailures metric.Int64Counter
	httpRequests     metric.Int64Counter
	httpDuration     metric.Float64Histogram
}

// New creates the instruments on mp. A nil mp yields no-op instruments.
func New(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(meterName)

	var (
		m   Metrics
		err error
	)
	if m.fetchRequests, err = meter.Int64Counter("fetch_requests_total",
		metric.WithDescription("Page fetches by host and outcome.")); err != nil {
		return nil, fmt.Errorf("could not create fetch_requests_total: %w", err)
	}
	if m.fetchDuration, err = meter.Float64Histogram("fetch_duration_seconds",
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...)); err != nil {
		return nil, fmt.Errorf("could not create fetch_duration_seconds: %w", err)
	}
	if m.scanRuns, err = meter.Int64Counter("scan_runs_total",
		metric.WithDescription("Scan runs by outcome.")); err != nil {
		return nil, fmt.Errorf("could not create scan_runs_total: %w", err)
	}
	if m.scanDuration, err = meter.Float64Histogram("scan_duration_seconds",
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...)); err != nil {
		return nil, fmt.Errorf("could not create scan_duration_seconds: %w", err)
	}
	if m.deals, err = meter.Int64Counter("scan_deals_total",
		metric.WithDescription("Deals found, split by whether they passed the ROI filter.")); err != nil {
		return nil, fmt.Errorf("could not create scan_deals_total: %w", err)
	}
	if m.categoryFailures, err = meter.Int64Counter("scan_category_failures_total"); err != nil {
		return nil, fmt.Errorf("could not create scan_category_failures_total: %w", err)
	}
	if m.httpRequests, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("API requests by method, route and status.")); err != nil {
		return nil, fmt.Errorf("could not create http_requests_total: %w", err)
	}
	if m.httpDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...)); err != nil {
		return nil, fmt.Errorf("could not create http_request_duration_seconds: %w", err)
	}

	return &m, nil
}

// Nop returns instruments that record nothing.
func Nop() *Metrics {
	m, _ := New(nil)

	return m
}

// RecordFetch records one page fetch.
func (m *Metrics) RecordFetch(ctx context.Context, host, outcome string, took time.Duration) {
	attrs := metric.WithAttributes(attribute.String("host", host), attribute.String("outcome", outcome))
	m.fetchRequests.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, took.Seconds(), attrs)
}

// RecordScan records a finished scan run.
func (m *Metrics) RecordScan(ctx context.Context, outcome string, took time.Duration, deals, filtered int) {
	m.scanRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.scanDuration.Record(ctx, took.Seconds())
	m.deals.Add(ctx, int64(filtered), metric.WithAttributes(attribute.Bool("filtered", true)))
	m.deals.Add(ctx, int64(deals-filtered), metric.WithAttributes(attribute.Bool("filtered", false)))
}

// RecordCategoryFailure records a category that could not be scanned.
func (m *Metrics) RecordCategoryFailure(ctx context.Context, category string) {
	m.categoryFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordHTTP records one served API request. route is the matched mux pattern.
func (m *Metrics) RecordHTTP(ctx context.Context, method, route string, status int, took time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, took.Seconds(), attrs)
}
