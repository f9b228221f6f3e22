package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// categoryPattern maps merchant vocabulary to a category hint. Patterns are
// checked in priority order and the first match wins; the hint is advisory
// and user rules or corrections override it downstream.
type categoryPattern struct {
	name     string
	expr     string
	priority int
}

type compiledCategory struct {
	regex *regexp.Regexp
	categoryPattern
}

// defaultCategoryPatterns covers the common Dhaka spending vocabulary, both
// romanized Bengali and English.
func defaultCategoryPatterns() []categoryPattern {
	return []categoryPattern{
		{
			name:     "beverages",
			expr:     `\b(cha|chai|tea|coffee|lassi|juice|borhani)\b`,
			priority: 90,
		},
		{
			name:     "food",
			expr:     `\b(khabar|lunch|dinner|breakfast|nasta|biriyani|biryani|kacchi|snacks?|restaurant|hotel)\b`,
			priority: 85,
		},
		{
			name:     "groceries",
			expr:     `\b(bazar|bajar|groceries|grocery|chal|dal|sobji|mach|murgi)\b`,
			priority: 85,
		},
		{
			name:     "transport",
			expr:     `\b(rickshaw|riksha|cng|bus|uber|pathao|train|launch|bhara|fare)\b`,
			priority: 80,
		},
		{
			name:     "telecom",
			expr:     `\b(recharge|flexiload|flexi|top\s*up|data\s*pack|internet)\b`,
			priority: 80,
		},
		{
			name:     "utilities",
			expr:     `\b(bidyut|electricity|gas\s*bill|pani|water\s*bill|current\s*bill|wasa|desco)\b`,
			priority: 75,
		},
		{
			name:     "health",
			expr:     `\b(oushodh|medicine|pharmacy|doctor|daktar|hospital|clinic)\b`,
			priority: 75,
		},
		{
			name:     "education",
			expr:     `\b(boi|books?|tuition|school\s*fee|college\s*fee|coaching\s*fee|khata|kolom)\b`,
			priority: 70,
		},
	}
}

// categorizer resolves merchant text to a category hint using a fixed,
// priority-ordered pattern table compiled once at construction.
type categorizer struct {
	patterns []compiledCategory
}

func newCategorizer(patterns []categoryPattern) (*categorizer, error) {
	compiled := make([]compiledCategory, 0, len(patterns))
	for _, p := range patterns {
		expr := p.expr
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		regex, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile category pattern %s: %w", p.name, err)
		}
		compiled = append(compiled, compiledCategory{
			categoryPattern: p,
			regex:           regex,
		})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].priority > compiled[j].priority
	})
	return &categorizer{patterns: compiled}, nil
}

// hint returns the first matching category, or empty when nothing matches.
func (c *categorizer) hint(text string) string {
	for _, p := range c.patterns {
		if p.regex.MatchString(text) {
			return p.name
		}
	}
	return ""
}
