package source

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// RawItem holds the untrusted text extracted for one listing element. Fields
// are empty when the element did not carry them.
type RawItem struct {
	Title         string
	PriceText     string
	Href          string
	ImageURL      string
	ConditionText string
}

// Strategy extracts raw items from a catalog page. Extract must be pure and
// return one RawItem per element it recognized, so a non-empty result means
// the strategy matched the page structure.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) []RawItem
}

// ItemBox recognizes listing cards by a container selector and reads every
// field through an ordered list of sub-selectors.
type ItemBox struct {
	Selector          string
	TitleSelectors    []string
	PriceSelectors    []string
	ConditionSelector []string
}

// Name implements Strategy.
func (s ItemBox) Name() string { return s.Selector }

// Extract implements Strategy.
func (s ItemBox) Extract(doc *goquery.Document) []RawItem {
	var items []RawItem
	doc.Find(s.Selector).Each(func(_ int, el *goquery.Selection) {
		img := el.Find("img").First()
		href, _ := el.Find("a[href]").First().Attr("href")

		items = append(items, RawItem{
			Title:         firstText(el, s.TitleSelectors),
			PriceText:     firstText(el, s.PriceSelectors),
			Href:          strings.TrimSpace(href),
			ImageURL:      firstAttr(img, "src", "data-src", "data-lazy-src"),
			ConditionText: firstText(el, s.ConditionSelector),
		})
	})

	return items
}

// AnchorFallback scans every link to an item page when no card layout is
// recognized. The price is searched in the closest enclosing block.
type AnchorFallback struct {
	MinTitleLength int
}

// Name implements Strategy.
func (AnchorFallback) Name() string { return "fallback" }

// Extract implements Strategy.
func (s AnchorFallback) Extract(doc *goquery.Document) []RawItem {
	var items []RawItem
	doc.Find(`a[href*="/items/"]`).Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		if utf8.RuneCountInString(title) <= s.MinTitleLength {
			return
		}
		href, _ := a.Attr("href")
		price := a.Closest("div, article").Find(`.price, [class*="price"]`).First().Text()

		items = append(items, RawItem{
			Title:     title,
			PriceText: strings.TrimSpace(price),
			Href:      strings.TrimSpace(href),
		})
	})

	return items
}

var ( //nolint: gochecknoglobals
	titleSelectors     = []string{`[data-testid="item-box-title"]`, ".item-box__title", "h3"}
	priceSelectors     = []string{`[data-testid="item-box-price"]`, ".item-box__price", ".price"}
	conditionSelectors = []string{`[data-testid="item-box-condition"]`, ".item-box__condition", ".condition"}
)

// DefaultStrategies is the chain for the source marketplace's catalog pages,
// newest layout first.
func DefaultStrategies() []Strategy {
	containers := []string{
		".feed-grid__item",
		`[data-testid="item-box"]`,
		".item-box",
		".new-item-box",
		`article[data-testid="item-box"]`,
	}

	out := make([]Strategy, 0, len(containers))
	for _, c := range containers {
		out = append(out, ItemBox{
			Selector:          c,
			TitleSelectors:    titleSelectors,
			PriceSelectors:    priceSelectors,
			ConditionSelector: conditionSelectors,
		})
	}

	return out
}

// firstText returns the trimmed text of the first selector with non-empty
// text inside el.
func firstText(el *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(el.Find(sel).First().Text()); t != "" {
			return t
		}
	}

	return ""
}

func firstAttr(el *goquery.Selection, attrs ...string) string {
	for _, name := range attrs {
		if v, ok := el.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}

	return ""
}
