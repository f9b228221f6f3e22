package router

import "regexp"

// Pattern tables for both supported languages. Bengali entries are romanized
// the way users actually type them, so spelling drifts; keyword matching for
// the non-ledger intents tolerates an edit distance of 1 on longer words.
// Expense verb matching is exact on purpose: a fuzzy verb hit could turn a
// question into a silent ledger write.

// adminPrefixes are explicit operator commands.
var adminPrefixes = []string{
	"/admin",
	"/mode",
	"/set",
	"/config",
}

// auditKeywords request the audit/debug surface.
var auditKeywords = []string{
	"audit",
	"debug",
	"show original",
	"keno likhecho",
	"audit dekhao",
}

// moneyPattern detects a standalone amount. A bare number counts as money:
// false positives land in CLARIFY_EXPENSE, which asks instead of writing, so
// over-detecting here is safe and under-detecting loses transactions.
var moneyPattern = regexp.MustCompile(`(^|\s)\d+(?:[.,]\d+)?(\s|$|,)`)

// expenseVerbs are first-person past-tense expense verbs. Matched exactly,
// word by word. "kinechi" is deliberately absent: buying something does not
// always mean the user paid for it themselves, and the original traffic
// showed it over-triggering; money without a verb asks for clarification
// instead.
var expenseVerbs = map[string]bool{
	"spent":     true,
	"paid":      true,
	"purchased": true,
	"korechi":   true,
	"korlam":    true,
	"dilam":     true,
	"diyechi":   true,
	"legeche":   true,
}

// analysisKeywords explicitly request a spending breakdown.
var analysisKeywords = []string{
	"analysis",
	"summary",
	"report",
	"breakdown",
	"total",
	"hishab",
	"hisab",
	"khoroch koto",
	"koto gelo",
}

// timeWindowKeywords reference a reporting period; an explicit time window
// alone is enough to ask for analysis.
var timeWindowKeywords = []string{
	"this month",
	"last month",
	"this week",
	"last week",
	"yesterday",
	"ei mash",
	"goto mash",
	"ei shoptaho",
	"gotokal",
}

// faqKeywords ask about capabilities.
var faqKeywords = []string{
	"help",
	"how do i",
	"what can you",
	"ki korte paro",
	"kivabe",
	"shahajjo",
}

// coachingKeywords seek advice rather than a capability answer.
var coachingKeywords = []string{
	"advice",
	"should i",
	"how can i save",
	"save money",
	"budget tips",
	"poramorsho",
	"ki kora uchit",
	"bachabo kivabe",
}
