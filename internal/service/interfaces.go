// Package service defines the interfaces for the application's collaborators.
package service

import (
	"context"
	"time"

	"github.com/khorochbd/khoroch/internal/model"
)

// Storage defines the contract for the persistence layer: the append-only
// raw ledger, the canonical command audit log, the overlay store and the
// idempotency guard.
type Storage interface {
	// Raw ledger. Rows are append-only: after insert only superseded_by may
	// ever be set, and that exactly once.
	SaveTransaction(ctx context.Context, txn *model.RawTransaction) error
	GetTransaction(ctx context.Context, id string) (*model.RawTransaction, error)
	GetUserTransactions(ctx context.Context, userID string, limit int) ([]model.RawTransaction, error)
	CountUserTransactions(ctx context.Context, userID string) (int, error)
	SupersedeTransaction(ctx context.Context, oldID, newID string) error

	// Canonical command audit log. AppendCC is insert-if-absent: replaying
	// an identical cc_id is a no-op, not an error.
	AppendCC(ctx context.Context, cc *model.CanonicalCommand) error
	GetCC(ctx context.Context, ccID string) (*model.CanonicalCommand, error)
	GetUserCCs(ctx context.Context, userID string, from, to time.Time) ([]model.CanonicalCommand, error)
	PurgeCCsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Idempotency guard. Reserve returns true the first time a key is seen;
	// uniqueness is enforced by the schema, not application logic.
	Reserve(ctx context.Context, userID, messageID string, itemIndex int) (bool, error)

	// RecordOutcome reserves the idempotency key and writes the ledger row
	// in one database transaction, so a crash between the two cannot strand
	// a half-applied message.
	RecordOutcome(ctx context.Context, userID, messageID string, itemIndex int, txn *model.RawTransaction) (bool, error)

	// Overlay store: user corrections and standing rules. Both are
	// append-only facts; rules toggle, nothing deletes.
	SaveCorrection(ctx context.Context, c *model.Correction) error
	GetCorrections(ctx context.Context, transactionID string) ([]model.Correction, error)
	ListUserCorrections(ctx context.Context, userID string) ([]model.Correction, error)
	SaveRule(ctx context.Context, r *model.Rule) error
	SetRuleActive(ctx context.Context, id int64, active bool) error
	GetActiveRules(ctx context.Context, userID string) ([]model.Rule, error)
	ListUserRules(ctx context.Context, userID string) ([]model.Rule, error)

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}

// Resolver composes raw + rules + corrections into one effective record.
type Resolver interface {
	Resolve(ctx context.Context, transactionID string) (*model.EffectiveRecord, error)
	// Invalidate drops cached records for a user after an overlay write.
	Invalidate(userID string)
}

// Responder delivers the pipeline's user-visible reply. The transport
// adapter behind it is out of scope here.
type Responder interface {
	Respond(ctx context.Context, userID, messageID, reply string) error
}
