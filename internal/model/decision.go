package model

// Decision is the confidence-gated outcome for a canonical command.
type Decision string

// Decision constants.
const (
	// DecisionAutoApply writes the transaction silently.
	DecisionAutoApply Decision = "AUTO_APPLY"
	// DecisionAskOnce asks the user one yes/no confirmation first.
	DecisionAskOnce Decision = "ASK_ONCE"
	// DecisionRawOnly takes no ledger action; the message is left for
	// fallback handling.
	DecisionRawOnly Decision = "RAW_ONLY"
)

// Valid reports whether the decision is a member of the closed enum.
func (d Decision) Valid() bool {
	switch d {
	case DecisionAutoApply, DecisionAskOnce, DecisionRawOnly:
		return true
	}
	return false
}
