package model

import "fmt"

// Mode is the operator-controlled rollout state for the decision pipeline.
// Modes are ordered by increasing user impact; the operator sets the mode
// explicitly and a switch takes effect on the next message.
type Mode string

// Mode constants.
const (
	// ModeFallback disables the pipeline entirely; legacy behavior only.
	ModeFallback Mode = "FALLBACK"
	// ModeShadow computes and audits commands but the user sees only the
	// legacy response and no ledger write happens.
	ModeShadow Mode = "SHADOW"
	// ModeDryrun computes, audits and writes the ledger, but replies are
	// framed as previews rather than confirmed actions.
	ModeDryrun Mode = "DRYRUN"
	// ModeOn is full behavior including overlay resolution in replies.
	ModeOn Mode = "ON"
)

// ParseMode converts a configuration string into a Mode. Any value outside
// the four recognized modes is a configuration error, never a silent default.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFallback, ModeShadow, ModeDryrun, ModeOn:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unrecognized mode %q (want FALLBACK, SHADOW, DRYRUN or ON)", s)
}

// Audits reports whether canonical commands are persisted in this mode.
func (m Mode) Audits() bool {
	return m != ModeFallback
}

// WritesLedger reports whether auto-applied commands reach the raw ledger.
func (m Mode) WritesLedger() bool {
	return m == ModeDryrun || m == ModeOn
}

// UserVisible reports whether the pipeline's reply is shown to the user.
func (m Mode) UserVisible() bool {
	return m == ModeDryrun || m == ModeOn
}
