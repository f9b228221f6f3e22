// Package decision maps canonical command confidence to an outcome using two
// thresholds. The mapping is pure: thresholds come from the immutable config
// loaded at startup, so a replayed command always re-decides identically.
package decision

import (
	"context"
	"time"

	"github.com/khorochbd/khoroch/internal/model"
)

// Engine holds the two confidence thresholds.
type Engine struct {
	tauHigh float64
	tauLow  float64
}

// New creates a decision engine. Threshold ordering is validated at config
// load; the engine trusts its inputs.
func New(tauHigh, tauLow float64) *Engine {
	return &Engine{tauHigh: tauHigh, tauLow: tauLow}
}

// Decide maps confidence to an outcome. Equality binds to the higher band
// (>= not >): confidence exactly at tau_high auto-applies, exactly at
// tau_low asks. Off-by-one here changes real money outcomes, so the
// comparisons are load-bearing.
//
// Intents that never touch the ledger are RAW_ONLY regardless of
// confidence; CLARIFY_EXPENSE asks by definition, but never silently
// applies.
func (e *Engine) Decide(cc model.CanonicalCommand) model.Decision {
	switch cc.Intent {
	case model.IntentExpenseLog:
		switch {
		case cc.Confidence >= e.tauHigh:
			return model.DecisionAutoApply
		case cc.Confidence >= e.tauLow:
			return model.DecisionAskOnce
		default:
			return model.DecisionRawOnly
		}
	case model.IntentClarifyExpense:
		if cc.Confidence >= e.tauLow {
			return model.DecisionAskOnce
		}
		return model.DecisionRawOnly
	case model.IntentAdmin, model.IntentPCAAudit, model.IntentAnalysis,
		model.IntentFAQ, model.IntentCoaching, model.IntentSmalltalk:
		return model.DecisionRawOnly
	default:
		return model.DecisionRawOnly
	}
}

// Event is the audit side effect of one decision. The engine stays pure;
// the pipeline emits events and the audit writer consumes them, so the
// decision function tests without storage.
type Event struct {
	DecidedAt time.Time
	Command   model.CanonicalCommand
}

// Sink consumes decision events.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}
