package model

import "time"

// OverlayField names a transaction field an overlay may rewrite.
type OverlayField string

// Overlay field constants.
const (
	FieldCategory OverlayField = "category"
	FieldMerchant OverlayField = "merchant"
	FieldCurrency OverlayField = "currency"
)

// Valid reports whether the field is one overlays are allowed to touch.
func (f OverlayField) Valid() bool {
	switch f {
	case FieldCategory, FieldMerchant, FieldCurrency:
		return true
	}
	return false
}

// Correction is a user-supplied, transaction-scoped override of one field.
// Corrections are append-only overlay facts; the raw row stays untouched.
type Correction struct {
	CreatedAt           time.Time
	TargetTransactionID string
	UserID              string
	NewValue            string
	Reason              string
	Field               OverlayField
	ID                  int64
}

// Rule is a standing, reusable categorization rule scoped to one user.
// Rules may be toggled inactive but are never deleted, for audit.
type Rule struct {
	CreatedAt      time.Time
	UserID         string
	MerchantMatch  string // case-insensitive substring predicate
	CategoryMatch  string // exact category-hint predicate, optional
	ApplyValue     string
	ApplyField     OverlayField
	ID             int64
	Active         bool
}

// Matches reports whether the rule's predicate applies to a raw transaction.
// An empty predicate component matches everything; a rule with no predicate
// at all matches nothing.
func (r *Rule) Matches(txn *RawTransaction) bool {
	if r.MerchantMatch == "" && r.CategoryMatch == "" {
		return false
	}
	if r.MerchantMatch != "" && !containsFold(txn.Merchant, r.MerchantMatch) {
		return false
	}
	if r.CategoryMatch != "" && !equalFold(txn.Category, r.CategoryMatch) {
		return false
	}
	return true
}

// Specificity orders rules when several match: longer predicates first.
func (r *Rule) Specificity() int {
	return len(r.MerchantMatch) + len(r.CategoryMatch)
}

// EffectiveRecord is the derived view of a transaction after applying, in
// order, the latest matching Correction per field, else any matching active
// Rule, else the raw values.
type EffectiveRecord struct {
	TransactionID string
	UserID        string
	Currency      string
	Category      string
	Merchant      string
	// Source notes which layer supplied each rewritten field.
	Source      map[OverlayField]OverlaySource
	AmountMinor int64
}

// OverlaySource identifies which layer a field's effective value came from.
type OverlaySource string

// Overlay source constants, in precedence order.
const (
	SourceCorrection OverlaySource = "correction"
	SourceRule       OverlaySource = "rule"
	SourceRaw        OverlaySource = "raw"
)
