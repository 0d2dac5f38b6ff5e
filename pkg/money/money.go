// Package money normalizes marketplace price strings into decimals. All
// prices are treated as EUR major units.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// priceToken matches the first number-shaped token, including grouping and
// decimal separators ("1.234,50", "12,5", "15").
var priceToken = regexp.MustCompile(`\d[\d.,]*`)

var currencyMarkers = strings.NewReplacer( //nolint: gochecknoglobals
	"EUR", "",
	"€", "",
	"\u00a0", " ",
)

// foreignCurrency matches markers of prices that are not in EUR.
var foreignCurrency = regexp.MustCompile(`[$£¥]|\b(?:USD|GBP|CHF|PLN|CZK|SEK|DKK|AUD|CAD|JPY)\b`)

// ParseLocalePrice extracts the first numeric token of text and parses it with
// the German convention: ',' separates decimals and '.' groups thousands.
// It reports false when no valid non-negative price is found.
func ParseLocalePrice(text string) (decimal.Decimal, bool) {
	tok := priceToken.FindString(text)
	if tok == "" {
		return decimal.Decimal{}, false
	}

	return parseGerman(tok)
}

// ParseReferencePrice strips currency markers and thousands separators from
// a reference-marketplace price ("EUR 1.234,00", "12,50 €") and parses it.
// For ranges ("EUR 10,00 bis EUR 20,00") the lower bound is used. Prices
// quoted in another currency ("$1,234.56", "£1,050.00") are rejected.
func ParseReferencePrice(text string) (decimal.Decimal, bool) {
	if foreignCurrency.MatchString(text) {
		return decimal.Decimal{}, false
	}

	cleaned := strings.TrimSpace(currencyMarkers.Replace(text))
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	tok := priceToken.FindString(cleaned)
	if tok == "" {
		return decimal.Decimal{}, false
	}

	return parseGerman(tok)
}

func parseGerman(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimRight(tok, ".,")
	if tok == "" {
		return decimal.Decimal{}, false
	}

	// the later of both separators is the decimal one ("1,234.56").
	if c, d := strings.LastIndexByte(tok, ','), strings.LastIndexByte(tok, '.'); c >= 0 && d > c {
		if strings.Count(tok, ".") > 1 {
			return decimal.Decimal{}, false
		}

		return parseDecimal(strings.ReplaceAll(tok, ",", ""))
	}

	// a single dot not followed by exactly three digits, with no comma
	// anywhere, is a decimal point ("12.50"). Otherwise dots group thousands.
	if !strings.Contains(tok, ",") && strings.Count(tok, ".") == 1 {
		if i := strings.IndexByte(tok, '.'); len(tok)-i-1 != 3 {
			return parseDecimal(tok)
		}
	}

	normalized := strings.ReplaceAll(tok, ".", "")
	if strings.Count(normalized, ",") > 1 {
		return decimal.Decimal{}, false
	}

	return parseDecimal(strings.Replace(normalized, ",", ".", 1))
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}

	return d, true
}

// Format renders d in German notation with the euro sign, e.g. "1234,50 €".
func Format(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + " €"
}
