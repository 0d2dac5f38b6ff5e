package domain

import (
	"arbitrage/pkg/serrors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Platform identifies which marketplace a listing was scraped from.
type Platform string

const (
	// PlatformSource is the marketplace whose active listings are scanned for buy opportunities.
	PlatformSource Platform = "source"
	// PlatformReference is the marketplace whose sold listings establish market value.
	PlatformReference Platform = "reference"
)

// Condition is the normalized item condition vocabulary.
type Condition string

const (
	ConditionNewWithTags Condition = "new_with_tags"
	ConditionNew         Condition = "new"
	ConditionVeryGood    Condition = "very_good"
	ConditionGood        Condition = "good"
	ConditionAcceptable  Condition = "acceptable"
	ConditionUsed        Condition = "used"
)

var conditionLabels = map[Condition]string{ //nolint: gochecknoglobals
	ConditionNewWithTags: "Neu mit Etikett",
	ConditionNew:         "Neu",
	ConditionVeryGood:    "Sehr gut",
	ConditionGood:        "Gut",
	ConditionAcceptable:  "Akzeptabel",
	ConditionUsed:        "Gebraucht",
}

// Label returns the human-readable (German) label of the condition.
func (c Condition) Label() string {
	if l, ok := conditionLabels[c]; ok {
		return l
	}

	return string(c)
}

// Valid reports whether c is part of the fixed vocabulary.
func (c Condition) Valid() bool {
	_, ok := conditionLabels[c]

	return ok
}

// ErrMalformedListing is returned when a listing draft misses one of the
// required fields. Scrapers count these and drop them silently.
var ErrMalformedListing = serrors.NewKind("MALFORMED_LISTING")

// Listing is a single marketplace item. It can only be constructed through
// NewListing, so every Listing in the system has a title, an absolute URL and
// a non-negative price.
type Listing struct {
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	URL       string          `json:"url"`
	ImageURL  string          `json:"imageUrl"`
	Condition Condition       `json:"condition"`
	Platform  Platform        `json:"platform"`
}

// ListingDraft collects the partially extracted fields of a listing. Price is
// nil when no price could be extracted.
type ListingDraft struct {
	Title     string
	Price     *decimal.Decimal
	URL       string
	ImageURL  string
	Condition Condition
	Platform  Platform
}

// NewListing validates the draft and builds a Listing. Incomplete drafts are
// rejected with ErrMalformedListing.
func NewListing(d ListingDraft) (Listing, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Listing{}, serrors.With(ErrMalformedListing, "listing has no title")
	}
	if d.Price == nil {
		return Listing{}, serrors.With(ErrMalformedListing, "listing %q has no price", title)
	}
	if d.Price.IsNegative() {
		return Listing{}, serrors.With(ErrMalformedListing, "listing %q has negative price %s", title, d.Price)
	}
	u, err := url.Parse(strings.TrimSpace(d.URL))
	if err != nil || d.URL == "" || !u.IsAbs() || u.Host == "" {
		return Listing{}, serrors.With(ErrMalformedListing, "listing %q has no absolute url", title)
	}

	cond := d.Condition
	if !cond.Valid() {
		cond = ConditionUsed
	}
	platform := d.Platform
	if platform == "" {
		platform = PlatformSource
	}

	return Listing{
		Title:     title,
		Price:     *d.Price,
		URL:       u.String(),
		ImageURL:  strings.TrimSpace(d.ImageURL),
		Condition: cond,
		Platform:  platform,
	}, nil
}

// ComparableSet holds the reference-marketplace sale prices that match a
// search term. An empty set makes the term non-evaluable.
type ComparableSet struct {
	SearchTerm string            `json:"searchTerm"`
	Prices     []decimal.Decimal `json:"prices"`
}

// Empty reports whether the set has no comparable prices.
func (c ComparableSet) Empty() bool { return len(c.Prices) == 0 }
