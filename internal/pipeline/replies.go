package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/khorochbd/khoroch/internal/model"
)

// legacyReply is what FALLBACK, SHADOW and out-of-scope users see. The real
// legacy responder lives in the transport layer; this is its stand-in.
func legacyReply() string {
	return "Noted! Send \"help\" to see what I can do."
}

// frameReply produces the user-visible reply for the current mode.
// DRYRUN frames writes as previews; ON states them as done, including the
// effective (overlay-resolved) category when it differs from the raw one.
func (p *Pipeline) frameReply(ctx context.Context, cc model.CanonicalCommand, candidates []model.Candidate, writes int) string {
	switch cc.Decision {
	case model.DecisionAutoApply:
		if p.cfg.Mode == model.ModeDryrun {
			return fmt.Sprintf("Preview: would log %s.", describeItems(candidates))
		}
		return fmt.Sprintf("Logged %s.%s", describeItems(candidates), p.transparencyNote(ctx, cc))
	case model.DecisionAskOnce:
		if cc.Intent == model.IntentClarifyExpense {
			return fmt.Sprintf("Did you spend %s? Reply yes to log it.", describeItems(candidates))
		}
		return fmt.Sprintf("Log %s? Reply yes to confirm.", describeItems(candidates))
	case model.DecisionRawOnly:
		return replyForIntent(cc.Intent)
	}
	return legacyReply()
}

// transparencyNote appends the effective categorization when a rule or
// correction changed what the user will see in reports. ON mode only.
func (p *Pipeline) transparencyNote(ctx context.Context, cc model.CanonicalCommand) string {
	if p.cfg.Mode != model.ModeOn || p.resolver == nil {
		return ""
	}

	txns, err := p.storage.GetUserTransactions(ctx, cc.UserID, 1)
	if err != nil || len(txns) == 0 || txns[0].SourceCCID != cc.CCID {
		return ""
	}

	eff, err := p.resolver.Resolve(ctx, txns[0].ID)
	if err != nil {
		return ""
	}
	if src, ok := eff.Source[model.FieldCategory]; ok && src != model.SourceRaw && eff.Category != "" {
		return fmt.Sprintf(" Categorized as %s by your %s.", eff.Category, src)
	}
	return ""
}

func replyForIntent(intent model.Intent) string {
	switch intent {
	case model.IntentAnalysis:
		return "Pulling up your spending summary..."
	case model.IntentFAQ:
		return "I log expenses you tell me about and answer questions about your spending."
	case model.IntentCoaching:
		return "Let's look at where your money goes and find a saving or two."
	case model.IntentAdmin:
		return "Admin command received."
	case model.IntentPCAAudit:
		return "Here is the audit trail for your recent messages."
	default:
		return legacyReply()
	}
}

func describeItems(candidates []model.Candidate) string {
	if len(candidates) == 0 {
		return "that"
	}
	parts := make([]string, 0, len(candidates))
	for i := range candidates {
		parts = append(parts, describeCandidate(&candidates[i]))
	}
	return strings.Join(parts, ", ")
}

func describeCandidate(c *model.Candidate) string {
	amount := formatAmount(c.AmountMinor, c.Currency)
	if c.MerchantHint != "" {
		return fmt.Sprintf("%s for %s", amount, c.MerchantHint)
	}
	return amount
}

// formatAmount renders a minor-unit amount. Both supported currencies carry
// two decimal places.
func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, currency)
}
