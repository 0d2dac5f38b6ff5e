// Package condition maps the free-text condition labels of a marketplace onto
// the normalized domain.Condition vocabulary.
package condition

import (
	"arbitrage/pkg/domain"
	"strings"
)

// Rule matches when every AllOf substring occurs in the lower-cased label.
type Rule struct {
	Condition domain.Condition
	AllOf     []string
}

func (r Rule) matches(label string) bool {
	for _, s := range r.AllOf {
		if !strings.Contains(label, s) {
			return false
		}
	}

	return len(r.AllOf) > 0
}

// GermanRules are the source marketplace's labels, most specific first. The
// order is the precedence: "neu mit etikett" has to be tested before "neu" and
// "sehr gut" before "gut".
var GermanRules = []Rule{ //nolint: gochecknoglobals
	{Condition: domain.ConditionNewWithTags, AllOf: []string{"neu", "etikett"}},
	{Condition: domain.ConditionNew, AllOf: []string{"neu"}},
	{Condition: domain.ConditionVeryGood, AllOf: []string{"sehr gut"}},
	{Condition: domain.ConditionGood, AllOf: []string{"gut"}},
	{Condition: domain.ConditionAcceptable, AllOf: []string{"akzeptabel"}},
}

// Normalizer applies an ordered rule table. The first matching rule wins.
type Normalizer struct {
	Rules   []Rule
	Default domain.Condition
}

// German returns the normalizer for the source marketplace's labels.
func German() Normalizer {
	return Normalizer{Rules: GermanRules, Default: domain.ConditionUsed}
}

// Normalize maps raw onto the vocabulary. Unknown labels, including the empty
// string, map to the default.
func (n Normalizer) Normalize(raw string) domain.Condition {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return n.fallback()
	}
	for _, r := range n.Rules {
		if r.matches(label) {
			return r.Condition
		}
	}

	return n.fallback()
}

func (n Normalizer) fallback() domain.Condition {
	if n.Default == "" {
		return domain.ConditionUsed
	}

	return n.Default
}
