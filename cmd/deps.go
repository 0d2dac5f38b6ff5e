package main

import (
	"arbitrage/internal/config"
	"arbitrage/internal/evaluator"
	"arbitrage/internal/notify"
	"arbitrage/internal/scanner"
	"arbitrage/internal/scraper/reference"
	"arbitrage/internal/scraper/source"
	"arbitrage/pkg/fetch"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/metrics"
	"arbitrage/pkg/storage"
	"arbitrage/pkg/storage/postgres"
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// getPostgres opens the scan history database. The returned function closes
// the pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	db := cfg.Database
	pg, err := postgres.New(ctx, postgres.Options{
		Username:           db.Username,
		Password:           db.Password,
		Host:               db.Host,
		Port:               db.Port,
		Database:           db.DatabaseName,
		SslMode:            db.SslMode,
		ConnMaxLifetime:    db.ConnMaxLifetime,
		ConnMaxIdleTime:    db.ConnMaxIdleTime,
		MaxOpenConnections: db.MaxOpenConnections,
		MaxIdleConnections: db.MaxIdleConnections,
	})
	if err != nil {
		logger.Fatal(ctx, "could not connect to postgres",
			zap.String("host", db.Host), zap.String("database", db.DatabaseName), zap.Error(err))
	}

	return pg, func() {
		if err := pg.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres pool", zap.Error(err))
		}
	}
}

// getMetrics creates the instruments exported on the default prometheus registry.
func getMetrics(ctx context.Context) *metrics.Metrics {
	mp, err := metrics.NewProvider(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
	}
	m, err := metrics.New(mp)
	if err != nil {
		logger.Fatal(ctx, "could not create metrics", zap.Error(err))
	}

	return m
}

// getFetcher builds the page fetcher for the configured mode. Both marketplaces
// share one host limiter. The returned function releases the browser.
func getFetcher(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (fetch.Fetcher, func()) {
	var (
		base    fetch.Fetcher
		release = func() {}
	)
	switch cfg.Fetch.Mode {
	case "browser":
		b := fetch.NewBrowserFetcher(fetch.BrowserOptions{
			Headless: cfg.Fetch.Headless,
			Timeout:  cfg.Fetch.Timeout,
		})
		base, release = b, b.Close
	case "http", "":
		base = fetch.NewHTTPFetcher(fetch.HTTPOptions{Timeout: cfg.Fetch.Timeout})
	default:
		logger.Fatal(ctx, "unknown fetch mode", zap.String("mode", cfg.Fetch.Mode))
	}

	limiter := fetch.NewHostLimiter(fetch.LimiterOptions{
		MinDelay: cfg.Fetch.MinDelay,
		MaxDelay: cfg.Fetch.MaxDelay,
	})

	return fetch.NewInstrumentedFetcher(fetch.NewLimitedFetcher(base, limiter), m), release
}

// getNotifier returns the e-mail notifier, or a no-op one when SMTP is not configured.
func getNotifier(cfg *config.Config) notify.Notifier {
	if cfg.SMTP.Host == "" || len(cfg.SMTP.To) == 0 {
		return notify.NopNotifier{}
	}

	return notify.NewEmailNotifier(notify.SMTPOptions{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
		Timeout:  cfg.SMTP.Timeout,
	}, nil)
}

// getScanner wires scrapers, evaluator and notifier into the orchestrator.
// strg may be nil when persistence is disabled.
func getScanner(
	ctx context.Context,
	cfg *config.Config,
	strg storage.Storage,
	m *metrics.Metrics,
) (scanner.Scanner, func()) {
	fetcher, release := getFetcher(ctx, cfg, m)

	sourceOpts := source.DefaultOptions()
	sourceOpts.Origin = cfg.Fetch.SourceOrigin
	src, err := source.New(fetcher, sourceOpts)
	if err != nil {
		logger.Fatal(ctx, "could not create source scraper", zap.Error(err))
	}

	ref, err := reference.New(fetcher, reference.Options{
		Origin:             cfg.Fetch.ReferenceOrigin,
		MinTitleSimilarity: cfg.Scan.MinTitleSimilarity,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create reference scraper", zap.Error(err))
	}

	opts, err := scanner.NewOptions(cfg)
	if err != nil {
		logger.Fatal(ctx, "invalid scan configuration", zap.Error(err))
	}

	s := scanner.New(scanner.Deps{
		Source:    src,
		Reference: ref,
		Evaluator: evaluator.New(evaluator.FlatPercentFees{
			Flat:    decimal.NewFromFloat(cfg.Fees.Flat),
			Percent: decimal.NewFromFloat(cfg.Fees.Percent),
		}),
		Storage:  strg,
		Notifier: getNotifier(cfg),
		Metrics:  m,
	}, opts)

	return s, release
}
