// Package pipeline runs the decision flow for inbound messages: route,
// build the canonical command, decide, audit, and conditionally write the
// ledger, all behind the operator-controlled mode gate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/khorochbd/khoroch/internal/command"
	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/config"
	"github.com/khorochbd/khoroch/internal/decision"
	"github.com/khorochbd/khoroch/internal/extractor"
	"github.com/khorochbd/khoroch/internal/model"
	"github.com/khorochbd/khoroch/internal/router"
	"github.com/khorochbd/khoroch/internal/service"
)

// Message is one inbound chat message, already acknowledged by the transport
// and queued for processing.
type Message struct {
	ReceivedAt time.Time
	UserID     string
	MessageID  string
	Text       string
	IsNewUser  bool
}

// Result is the outcome of processing one message.
type Result struct {
	CC           *model.CanonicalCommand
	Reply        string
	LedgerWrites int
	Legacy       bool
}

// Pipeline wires the pure stages to storage and the extractor.
type Pipeline struct {
	cfg       *config.Config
	storage   service.Storage
	extractor extractor.Extractor
	engine    *decision.Engine
	sink      decision.Sink
	resolver  service.Resolver
}

// New assembles a pipeline from an already-validated config.
func New(cfg *config.Config, storage service.Storage, ext extractor.Extractor, resolver service.Resolver) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		storage:   storage,
		extractor: extractor.NewWithTimeout(ext, cfg.ExtractorTimeout),
		engine:    decision.New(cfg.TauHigh, cfg.TauLow),
		sink:      &auditSink{storage: storage},
		resolver:  resolver,
	}
}

// Process runs one message through the gate and the decision flow. The mode
// is evaluated here, at the top, per request: flipping the mode affects only
// future messages because commands and ledger rows are immutable.
//
// An error return means the message was NOT durably processed and is safe to
// redeliver; idempotency makes the replay a no-op once the writes land.
func (p *Pipeline) Process(ctx context.Context, msg Message) (Result, error) {
	if p.cfg.Mode == model.ModeFallback {
		return Result{Reply: legacyReply(), Legacy: true}, nil
	}
	if p.cfg.Scope == config.ScopeNewUsers && !msg.IsNewUser {
		return Result{Reply: legacyReply(), Legacy: true}, nil
	}

	history, err := p.storage.CountUserTransactions(ctx, msg.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load user history: %w", err)
	}

	intent := router.Route(msg.Text, router.Scope{
		TransactionCount:   history,
		CoachingMinHistory: p.cfg.CoachingMinHistory,
	})

	candidates, chosen := p.extractCandidates(ctx, intent, msg)

	cc, err := command.Build(intent, chosen, msg.UserID, msg.MessageID, msg.ReceivedAt, msg.Text)
	if err != nil {
		// Programming-error class: log it, degrade to RAW_ONLY, never
		// surface to the user.
		common.LogError(err, "canonical command construction failed", common.Fields{
			"user_id":    msg.UserID,
			"message_id": msg.MessageID,
			"intent":     intent,
		})
		return Result{Reply: legacyReply(), Legacy: true}, nil
	}

	cc.Decision = p.engine.Decide(cc)

	if err := p.sink.Record(ctx, decision.Event{Command: cc, DecidedAt: time.Now().UTC()}); err != nil {
		// Audit write failure means the message is not acknowledged.
		return Result{}, fmt.Errorf("failed to audit command: %w", err)
	}

	result := Result{CC: &cc}

	if cc.Decision == model.DecisionAutoApply && p.cfg.Mode.WritesLedger() {
		writes, err := p.applyCandidates(ctx, msg, cc, candidates)
		if err != nil {
			return Result{}, err
		}
		result.LedgerWrites = writes
		if writes > 0 {
			common.LogInfo("ledger updated", common.Fields{
				"user_id": msg.UserID,
				"cc_id":   cc.CCID,
				"writes":  writes,
			})
		}
	}

	result.Reply = p.frameReply(ctx, cc, candidates, result.LedgerWrites)
	if p.cfg.Mode == model.ModeShadow {
		// The command above was computed and audited for comparison only;
		// the user must see the legacy response.
		result.Reply = legacyReply()
		result.Legacy = true
	}

	return result, nil
}

// extractCandidates runs the extractor for expense-shaped intents. Extraction
// failure, timeout and an empty parse are all fail-safe: the command is still
// built and audited, carrying a zero-confidence empty candidate that the
// engine can only ever decide as RAW_ONLY.
func (p *Pipeline) extractCandidates(ctx context.Context, intent model.Intent, msg Message) ([]model.Candidate, *model.Candidate) {
	if !intent.NeedsCandidate() {
		return nil, nil
	}

	candidates, err := p.extractor.Extract(ctx, msg.Text)
	if err != nil {
		if errors.Is(err, common.ErrExtractionTimeout) {
			slog.Warn("Extractor timed out, degrading to RAW_ONLY",
				"user_id", msg.UserID, "message_id", msg.MessageID)
		} else {
			common.LogError(err, "extraction failed", common.Fields{
				"user_id":    msg.UserID,
				"message_id": msg.MessageID,
			})
		}
		return nil, &model.Candidate{}
	}
	if len(candidates) == 0 {
		return nil, &model.Candidate{}
	}

	// The command carries the strongest candidate; ledger writes still
	// cover every parsed item.
	best := 0
	for i := range candidates {
		if candidates[i].Confidence > candidates[best].Confidence {
			best = i
		}
	}
	return candidates, &candidates[best]
}

// applyCandidates writes one ledger row per parsed item. Each row reserves
// its own derived idempotency key, so "coffee 100, lunch 300" replayed after
// a crash resumes exactly where it stopped.
func (p *Pipeline) applyCandidates(ctx context.Context, msg Message, cc model.CanonicalCommand, candidates []model.Candidate) (int, error) {
	writes := 0
	for i := range candidates {
		txn := &model.RawTransaction{
			ID:          uuid.NewString(),
			UserID:      msg.UserID,
			AmountMinor: candidates[i].AmountMinor,
			Currency:    candidates[i].Currency,
			Category:    candidates[i].CategoryHint,
			Merchant:    candidates[i].MerchantHint,
			SourceCCID:  cc.CCID,
		}

		var fresh bool
		err := common.WithRetry(ctx, func() error {
			var opErr error
			fresh, opErr = p.storage.RecordOutcome(ctx, msg.UserID, msg.MessageID, i, txn)
			if opErr != nil {
				return &common.RetryableError{Err: opErr, Retryable: true}
			}
			return nil
		}, common.RetryOptions{MaxAttempts: 3})
		if err != nil {
			return writes, fmt.Errorf("failed to record outcome for item %d: %w", i, err)
		}
		if fresh {
			writes++
		}
	}
	return writes, nil
}

// auditSink writes decision events to the canonical command audit log.
type auditSink struct {
	storage service.Storage
}

func (a *auditSink) Record(ctx context.Context, ev decision.Event) error {
	cc := ev.Command
	return a.storage.AppendCC(ctx, &cc)
}
