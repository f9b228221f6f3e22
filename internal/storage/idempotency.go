package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/khorochbd/khoroch/internal/model"
)

// Reserve claims the (user, message, item) key. Returns true when this is
// the first sighting. The UNIQUE constraint does the real work: two
// concurrent retries race at the database, not in application logic.
func (s *SQLiteStorage) Reserve(ctx context.Context, userID, messageID string, itemIndex int) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return false, err
	}
	if err := validateString(messageID, "messageID"); err != nil {
		return false, err
	}
	if itemIndex < 0 {
		return false, fmt.Errorf("itemIndex cannot be negative, got %d", itemIndex)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO idempotency_keys (user_id, message_id, item_index)
		VALUES (?, ?, ?)`, userID, messageID, itemIndex)
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check reservation: %w", err)
	}
	return affected == 1, nil
}

// RecordOutcome reserves the idempotency key and writes the ledger row in a
// single database transaction. Returns false without writing when the key
// was already claimed, so replaying a processed message is a no-op.
func (s *SQLiteStorage) RecordOutcome(ctx context.Context, userID, messageID string, itemIndex int, txn *model.RawTransaction) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateTransaction(txn); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO idempotency_keys (user_id, message_id, item_index)
		VALUES (?, ?, ?)`, userID, messageID, itemIndex)
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check reservation: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_minor, currency, category, merchant, source_cc_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, txn.AmountMinor, txn.Currency, txn.Category, txn.Merchant,
		nullString(txn.SourceCCID), txn.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit outcome: %w", err)
	}
	return true, nil
}
