package extractor

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/khorochbd/khoroch/internal/model"
	"github.com/khorochbd/khoroch/internal/router"
)

// DefaultCurrency is assumed when the message carries a bare amount.
const DefaultCurrency = "BDT"

// currencyExponent maps a currency to its minor-unit decimal places.
var currencyExponent = map[string]int64{
	"BDT": 100,
	"USD": 100,
}

var currencyTokens = map[string]string{
	"taka":   "BDT",
	"tk":     "BDT",
	"bdt":    "BDT",
	"poysha": "BDT",
	"৳":      "BDT",
	"usd":    "USD",
	"$":      "USD",
}

// amountExpr captures an amount with an optional trailing currency token.
var amountExpr = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(taka|tk|bdt|poysha|usd|\$|৳)?`)

// Regex is the reference extractor: a deterministic bilingual amount parser.
// It exists so the pipeline and its tests do not depend on the external
// extractor service; production wiring swaps in the real client behind the
// same interface.
type Regex struct {
	categories *categorizer
}

// NewRegex creates the reference extractor.
func NewRegex() *Regex {
	categories, err := newCategorizer(defaultCategoryPatterns())
	if err != nil {
		// The default table is static; a compile failure is a defect caught
		// by the categorizer tests, not a runtime condition.
		panic(err)
	}
	return &Regex{categories: categories}
}

// Extract parses every amount in the text into a candidate. Multi-amount
// messages ("coffee 100, lunch 300") yield one candidate per amount, in
// text order, which the idempotency guard later keys by item index.
func (r *Regex) Extract(_ context.Context, text string) ([]model.Candidate, error) {
	normalized := router.Normalize(text)
	segments := strings.Split(normalized, ",")

	var candidates []model.Candidate
	for _, seg := range segments {
		m := amountExpr.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil || value <= 0 {
			continue
		}

		currency := DefaultCurrency
		explicit := false
		if code, ok := currencyTokens[m[2]]; ok {
			currency = code
			explicit = true
		}

		verb := router.HasExpenseVerb(strings.Fields(normalized))
		candidates = append(candidates, model.Candidate{
			CategoryHint: r.categories.hint(seg),
			MerchantHint: merchantHint(seg, m[0]),
			Currency:     currency,
			AmountMinor:  int64(value*float64(currencyExponent[currency]) + 0.5),
			Confidence:   confidence(explicit, verb),
			VerbPresent:  verb,
		})
	}

	return candidates, nil
}

// confidence is a fixed heuristic: explicit currency plus an expense verb is
// a near-certain expense; a bare number with neither barely clears noise.
func confidence(explicitCurrency, verb bool) float64 {
	switch {
	case explicitCurrency && verb:
		return 0.95
	case explicitCurrency || verb:
		return 0.70
	default:
		return 0.40
	}
}

// merchantHint is whatever non-amount text remains in the segment.
func merchantHint(segment, amountMatch string) string {
	rest := strings.TrimSpace(strings.Replace(segment, amountMatch, " ", 1))
	words := strings.Fields(rest)
	var kept []string
	for _, w := range words {
		if router.HasExpenseVerb([]string{w}) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
