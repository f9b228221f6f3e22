// Package command builds canonical commands: the immutable, deterministically
// identified record of one routing+decision outcome.
package command

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
	"github.com/khorochbd/khoroch/internal/router"
)

// Build assembles a canonical command without a decision; the decision
// engine stamps that afterward. The CCID is a stable hash of the identifying
// inputs, so a retried webhook delivery rebuilds the identical command and
// dedups naturally downstream.
//
// A missing candidate on an expense intent and missing required fields are
// programming errors; callers log them and degrade the message to RAW_ONLY,
// never surface them to the user.
func Build(intent model.Intent, candidate *model.Candidate, userID, messageID string, receivedAt time.Time, rawText string) (model.CanonicalCommand, error) {
	if userID == "" {
		return model.CanonicalCommand{}, fmt.Errorf("%w: user_id", common.ErrSchema)
	}
	if messageID == "" {
		return model.CanonicalCommand{}, fmt.Errorf("%w: message_id", common.ErrSchema)
	}
	if receivedAt.IsZero() {
		return model.CanonicalCommand{}, fmt.Errorf("%w: received_at", common.ErrSchema)
	}
	if !intent.Valid() {
		return model.CanonicalCommand{}, fmt.Errorf("%w: intent %q", common.ErrSchema, intent)
	}
	if intent.NeedsCandidate() && candidate == nil {
		return model.CanonicalCommand{}, fmt.Errorf("%w: intent %s", common.ErrMalformedCandidate, intent)
	}

	var confidence float64
	if candidate != nil {
		confidence = candidate.Confidence
	}

	return model.CanonicalCommand{
		CCID:          CCID(userID, messageID, receivedAt, rawText),
		UserID:        userID,
		MessageID:     messageID,
		ReceivedAt:    receivedAt.UTC(),
		Intent:        intent,
		Slots:         model.SlotsFromCandidate(candidate),
		Confidence:    confidence,
		SchemaVersion: model.SchemaVersion,
	}, nil
}

// CCID derives the deterministic command identifier. Identical inputs always
// hash to the identical id, which is what makes replay and webhook-retry
// dedup work; never fold mutable state into this.
func CCID(userID, messageID string, receivedAt time.Time, rawText string) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		userID,
		messageID,
		receivedAt.UTC().Format(time.RFC3339),
		router.Normalize(rawText))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(data)))
}
