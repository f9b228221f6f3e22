// Package model defines the core domain models used throughout the application.
package model

// Intent classifies what an inbound message is asking for.
type Intent string

// Intent constants, in router precedence order.
const (
	IntentAdmin          Intent = "ADMIN"
	IntentPCAAudit       Intent = "PCA_AUDIT"
	IntentExpenseLog     Intent = "EXPENSE_LOG"
	IntentClarifyExpense Intent = "CLARIFY_EXPENSE"
	IntentAnalysis       Intent = "ANALYSIS"
	IntentFAQ            Intent = "FAQ"
	IntentCoaching       Intent = "COACHING"
	IntentSmalltalk      Intent = "SMALLTALK"
)

// Valid reports whether the intent is a member of the closed enum.
func (i Intent) Valid() bool {
	switch i {
	case IntentAdmin, IntentPCAAudit, IntentExpenseLog, IntentClarifyExpense,
		IntentAnalysis, IntentFAQ, IntentCoaching, IntentSmalltalk:
		return true
	}
	return false
}

// NeedsCandidate reports whether the intent requires extractor slots.
func (i Intent) NeedsCandidate() bool {
	return i == IntentExpenseLog || i == IntentClarifyExpense
}
