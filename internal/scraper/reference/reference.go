// Package reference scrapes sold listings from the reference marketplace to
// estimate market value.
package reference

import (
	"arbitrage/pkg/domain"
	"arbitrage/pkg/fetch"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/money"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("arbitrage/internal/scraper/reference") //nolint: gochecknoglobals

// DefaultOrigin is the reference marketplace.
const DefaultOrigin = "https://www.ebay.de"

// Options configures a Scraper.
type Options struct {
	Origin string
	// MinTitleSimilarity drops comparables whose title is less similar to the
	// search term than this Jaro-Winkler score and shares no word with it.
	// Zero disables the filter.
	MinTitleSimilarity float64
}

// Comparable is one sold listing.
type Comparable struct {
	Title string
	Price decimal.Decimal
	URL   string
}

// Scraper collects sold comparables.
type Scraper struct {
	fetcher fetch.Fetcher
	opts    Options
	origin  *url.URL
}

// New creates a Scraper.
func New(fetcher fetch.Fetcher, opts Options) (*Scraper, error) {
	if opts.Origin == "" {
		opts.Origin = DefaultOrigin
	}
	origin, err := url.Parse(opts.Origin)
	if err != nil || !origin.IsAbs() {
		return nil, fmt.Errorf("invalid origin %q", opts.Origin)
	}

	return &Scraper{fetcher: fetcher, opts: opts, origin: origin}, nil
}

// SearchURL returns the completed-and-sold search for term.
func (s *Scraper) SearchURL(term string) string {
	q := url.Values{}
	q.Set("_nkw", term)
	q.Set("LH_Sold", "1")
	q.Set("LH_Complete", "1")

	return s.origin.JoinPath("/sch/i.html").String() + "?" + q.Encode()
}

// SoldComparables returns the sold prices matching searchTerm. No results is
// an empty set, not an error.
func (s *Scraper) SoldComparables(ctx context.Context, searchTerm string) (domain.ComparableSet, error) {
	ctx, span := tracer.Start(ctx, "reference:sold-comparables")
	defer span.End()
	span.SetAttributes(attribute.String("term", searchTerm))

	html, err := s.fetcher.Fetch(ctx, s.SearchURL(searchTerm), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sold listings")

		return domain.ComparableSet{}, err
	}

	_, parseSpan := tracer.Start(ctx, "reference:parse")
	comps, err := s.Parse(html, searchTerm)
	parseSpan.SetAttributes(attribute.Int("comparables", len(comps)))
	parseSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse sold listings")

		return domain.ComparableSet{}, err
	}

	set := domain.ComparableSet{SearchTerm: searchTerm, Prices: make([]decimal.Decimal, 0, len(comps))}
	for _, c := range comps {
		set.Prices = append(set.Prices, c.Price)
	}

	logger.Info(ctx, "collected sold comparables",
		zap.String("term", searchTerm),
		zap.Int("comparables", len(set.Prices)),
	)

	return set, nil
}

// Parse extracts sold comparables from a result page.
func (s *Scraper) Parse(html, searchTerm string) ([]Comparable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("could not parse result page: %w", err)
	}

	var out []Comparable
	doc.Find(".s-item__wrapper").Each(func(_ int, el *goquery.Selection) {
		title := strings.TrimSpace(el.Find(".s-item__title").First().Text())
		if title == "" || strings.Contains(title, "Shop on eBay") {
			return
		}
		price, ok := money.ParseReferencePrice(el.Find(".s-item__price").First().Text())
		if !ok {
			return
		}
		if !s.relevant(title, searchTerm) {
			return
		}
		link, _ := el.Find(".s-item__link").First().Attr("href")

		out = append(out, Comparable{Title: title, Price: price, URL: strings.TrimSpace(link)})
	})

	return out, nil
}

func (s *Scraper) relevant(title, term string) bool {
	if s.opts.MinTitleSimilarity <= 0 || term == "" {
		return true
	}

	t, q := strings.ToLower(title), strings.ToLower(term)
	if matchr.JaroWinkler(t, q, true) >= s.opts.MinTitleSimilarity {
		return true
	}

	words := strings.Fields(t)
	for _, w := range strings.Fields(q) {
		for _, tw := range words {
			if w == tw {
				return true
			}
		}
	}

	return false
}
