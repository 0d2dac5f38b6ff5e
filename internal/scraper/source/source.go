// Package source scrapes the active listings of the source marketplace's
// catalog pages.
//
// Catalog markup changes often, so extraction tries an ordered chain of
// strategies and keeps the first that recognizes the page. A link scan is
// used as the last resort. Elements that cannot be turned into a complete
// listing are counted and dropped.
package source

import (
	"arbitrage/internal/condition"
	"arbitrage/pkg/domain"
	"arbitrage/pkg/fetch"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/money"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("arbitrage/internal/scraper/source") //nolint: gochecknoglobals

// DefaultOrigin is the marketplace origin relative links are resolved against.
const DefaultOrigin = "https://www.vinted.de"

// Options configures a Scraper. Zero values fall back to defaults.
type Options struct {
	Origin string
	// Strategies is the extraction chain, DefaultStrategies when empty.
	Strategies []Strategy
	// Fallback runs when no strategy matches. Nil disables it.
	Fallback Strategy
	// Conditions maps condition labels, condition.German when Rules is empty.
	Conditions condition.Normalizer
	// DefaultCondition is used when an element shows no condition label.
	DefaultCondition domain.Condition
}

// DefaultOptions returns the options for the source marketplace.
func DefaultOptions() Options {
	return Options{
		Origin:           DefaultOrigin,
		Strategies:       DefaultStrategies(),
		Fallback:         AnchorFallback{MinTitleLength: 5},
		Conditions:       condition.German(),
		DefaultCondition: domain.ConditionVeryGood,
	}
}

// Stats describes how a page was parsed.
type Stats struct {
	// Strategy is the name of the strategy that produced the items, empty
	// when nothing matched.
	Strategy string `json:"strategy"`
	// Discarded counts elements rejected as malformed listings.
	Discarded int `json:"discarded"`
}

// Scraper turns catalog pages into listings.
type Scraper struct {
	fetcher fetch.Fetcher
	opts    Options
	origin  *url.URL
}

// New creates a Scraper.
func New(fetcher fetch.Fetcher, opts Options) (*Scraper, error) {
	def := DefaultOptions()
	if opts.Origin == "" {
		opts.Origin = def.Origin
	}
	if len(opts.Strategies) == 0 {
		opts.Strategies = def.Strategies
	}
	if len(opts.Conditions.Rules) == 0 {
		opts.Conditions = def.Conditions
	}
	if !opts.DefaultCondition.Valid() {
		opts.DefaultCondition = def.DefaultCondition
	}

	origin, err := url.Parse(opts.Origin)
	if err != nil || !origin.IsAbs() {
		return nil, fmt.Errorf("invalid origin %q", opts.Origin)
	}

	return &Scraper{fetcher: fetcher, opts: opts, origin: origin}, nil
}

// ScrapeCatalog fetches catalogURL and extracts its listings. Fetch failures
// are returned as is. A page without recognizable items is not an error.
func (s *Scraper) ScrapeCatalog(ctx context.Context, catalogURL string) ([]domain.Listing, Stats, error) {
	ctx, span := tracer.Start(ctx, "source:scrape-catalog")
	defer span.End()
	span.SetAttributes(attribute.String("url", catalogURL))

	html, err := s.fetcher.Fetch(ctx, catalogURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")

		return nil, Stats{}, err
	}

	_, parseSpan := tracer.Start(ctx, "source:parse")
	listings, stats, err := s.Parse(html)
	parseSpan.SetAttributes(
		attribute.String("strategy", stats.Strategy),
		attribute.Int("listings", len(listings)),
		attribute.Int("discarded", stats.Discarded),
	)
	parseSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse catalog")

		return nil, stats, err
	}

	logger.Info(ctx, "scraped catalog",
		zap.String("url", catalogURL),
		zap.String("strategy", stats.Strategy),
		zap.Int("listings", len(listings)),
		zap.Int("discarded", stats.Discarded),
	)

	return listings, stats, nil
}

// SearchURL returns the newest-first catalog search for term.
func (s *Scraper) SearchURL(term string) string {
	q := url.Values{}
	q.Set("search_text", term)
	q.Set("order", "newest_first")

	return s.origin.JoinPath("/catalog").String() + "?" + q.Encode()
}

// ScrapeSearch scrapes the catalog search results for term.
func (s *Scraper) ScrapeSearch(ctx context.Context, term string) ([]domain.Listing, Stats, error) {
	return s.ScrapeCatalog(ctx, s.SearchURL(term))
}

// Parse extracts listings from html without any I/O.
func (s *Scraper) Parse(html string) ([]domain.Listing, Stats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("could not parse catalog page: %w", err)
	}

	var (
		raw   []RawItem
		stats Stats
	)
	for _, strategy := range s.opts.Strategies {
		if raw = strategy.Extract(doc); len(raw) > 0 {
			stats.Strategy = strategy.Name()

			break
		}
	}
	if len(raw) == 0 && s.opts.Fallback != nil {
		if raw = s.opts.Fallback.Extract(doc); len(raw) > 0 {
			stats.Strategy = s.opts.Fallback.Name()
		}
	}

	listings := make([]domain.Listing, 0, len(raw))
	for _, item := range raw {
		l, err := s.build(item)
		if errors.Is(err, domain.ErrMalformedListing) {
			stats.Discarded++

			continue
		}
		if err != nil {
			return nil, stats, err
		}
		listings = append(listings, l)
	}

	return listings, stats, nil
}

func (s *Scraper) build(item RawItem) (domain.Listing, error) {
	draft := domain.ListingDraft{
		Title:     item.Title,
		URL:       s.resolve(item.Href),
		ImageURL:  s.resolve(item.ImageURL),
		Condition: s.opts.DefaultCondition,
		Platform:  domain.PlatformSource,
	}
	if price, ok := money.ParseLocalePrice(item.PriceText); ok {
		draft.Price = &price
	}
	if item.ConditionText != "" {
		draft.Condition = s.opts.Conditions.Normalize(item.ConditionText)
	}

	return domain.NewListing(draft)
}

// resolve turns ref into an absolute URL on the marketplace origin. Empty and
// unparsable references resolve to "".
func (s *Scraper) resolve(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	return s.origin.ResolveReference(u).String()
}
