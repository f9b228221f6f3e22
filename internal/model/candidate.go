package model

// Candidate is one possible transaction parsed out of a message by the
// extractor. Candidates are ephemeral; they are never persisted directly.
type Candidate struct {
	CategoryHint string
	MerchantHint string
	Currency     string
	AmountMinor  int64
	Confidence   float64
	VerbPresent  bool
}

// Slots holds the normalized candidate fields carried by a canonical command.
type Slots struct {
	CategoryHint string `json:"category_hint,omitempty"`
	MerchantHint string `json:"merchant_hint,omitempty"`
	Currency     string `json:"currency,omitempty"`
	AmountMinor  int64  `json:"amount_minor,omitempty"`
	VerbPresent  bool   `json:"verb_present,omitempty"`
}

// SlotsFromCandidate copies the persisted subset of a candidate.
func SlotsFromCandidate(c *Candidate) Slots {
	if c == nil {
		return Slots{}
	}
	return Slots{
		CategoryHint: c.CategoryHint,
		MerchantHint: c.MerchantHint,
		Currency:     c.Currency,
		AmountMinor:  c.AmountMinor,
		VerbPresent:  c.VerbPresent,
	}
}
