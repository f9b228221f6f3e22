// Package router classifies inbound messages into intents using a fixed
// precedence hierarchy. Routing is a pure function of the text and the
// caller-supplied scope: no scoring, no model, same inputs same intent.
package router

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/khorochbd/khoroch/internal/model"
)

// Scope carries the per-user flags routing depends on. It is assembled by
// the pipeline from immutable config plus the user's history count, keeping
// Route itself free of storage access.
type Scope struct {
	// TransactionCount is how many raw transactions the user has.
	TransactionCount int
	// CoachingMinHistory gates COACHING: users below the threshold have no
	// data worth coaching on and fall through to SMALLTALK.
	CoachingMinHistory int
}

// Route classifies a message. Precedence: ADMIN, PCA_AUDIT, EXPENSE_LOG /
// CLARIFY_EXPENSE, ANALYSIS, FAQ, COACHING, SMALLTALK; first match wins.
//
// One deliberate wrinkle: a message carrying both money and an explicit
// analysis request resolves to ANALYSIS even though the expense check sits
// higher in the hierarchy. The guard lives here in the ordering, not in the
// verb check.
func Route(text string, scope Scope) model.Intent {
	t := Normalize(text)
	words := strings.Fields(t)

	if hasAdminPrefix(t) {
		return model.IntentAdmin
	}
	if matchesAny(t, words, auditKeywords) {
		return model.IntentPCAAudit
	}

	money := MoneyPresent(t)
	analysis := matchesAny(t, words, analysisKeywords) || matchesAny(t, words, timeWindowKeywords)

	if money && !analysis {
		if HasExpenseVerb(words) {
			return model.IntentExpenseLog
		}
		// Money with no first-person past-tense verb: carry the candidate
		// forward and ask, so a yes/no can resolve it.
		return model.IntentClarifyExpense
	}
	if analysis {
		return model.IntentAnalysis
	}
	if matchesAny(t, words, faqKeywords) {
		return model.IntentFAQ
	}
	if matchesAny(t, words, coachingKeywords) && scope.TransactionCount >= scope.CoachingMinHistory {
		return model.IntentCoaching
	}

	return model.IntentSmalltalk
}

// MoneyPresent reports whether the normalized text contains an amount.
func MoneyPresent(normalized string) bool {
	return moneyPattern.MatchString(normalized)
}

// HasExpenseVerb reports whether any word is a first-person past-tense
// expense verb. Matching is exact; see patterns.go for why.
func HasExpenseVerb(words []string) bool {
	for _, w := range words {
		if expenseVerbs[w] {
			return true
		}
	}
	return false
}

// Normalize lowercases, strips diacritics-adjacent punctuation and collapses
// whitespace so pattern tables match what users actually type.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace {
				b.WriteRune(' ')
			}
			prevSpace = true
		case r == '?' || r == '!' || r == '.' || r == ';':
			// Trailing punctuation breaks word-boundary matching.
			prevSpace = false
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return b.String()
}

func hasAdminPrefix(t string) bool {
	for _, p := range adminPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// matchesAny checks keyword phrases as substrings and single-word keywords
// with typo tolerance: romanized Bengali has no canonical spelling, so words
// of five runes or more match at edit distance one.
func matchesAny(t string, words, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(t, kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == kw {
				return true
			}
			if len([]rune(kw)) >= 5 && levenshtein.ComputeDistance(w, kw) == 1 {
				return true
			}
		}
	}
	return false
}
