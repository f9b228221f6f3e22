package model

import "time"

// RawTransaction is one row of the append-only raw ledger. Once written,
// only SupersededBy may ever be set; every other field is immutable.
// Corrections never touch these rows.
type RawTransaction struct {
	CreatedAt    time.Time
	ID           string
	UserID       string
	Currency     string
	Category     string
	Merchant     string // extractor's merchant hint at write time, may be empty
	SourceCCID   string // back-reference to the command that wrote it, if any
	SupersededBy string // self-reference set when a replacement row exists
	AmountMinor  int64  // positive, in the currency's minor unit
}

// Superseded reports whether a replacement row exists for this transaction.
func (t *RawTransaction) Superseded() bool {
	return t.SupersededBy != ""
}
