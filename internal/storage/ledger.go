package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

// SaveTransaction appends a row to the raw ledger.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.RawTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_minor, currency, category, merchant, source_cc_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, txn.AmountMinor, txn.Currency, txn.Category, txn.Merchant,
		nullString(txn.SourceCCID), txn.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves one raw ledger row.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.RawTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount_minor, currency, category, merchant, source_cc_id, superseded_by, created_at
		FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetUserTransactions returns a user's ledger rows, newest first.
func (s *SQLiteStorage) GetUserTransactions(ctx context.Context, userID string, limit int) ([]model.RawTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount_minor, currency, category, merchant, source_cc_id, superseded_by, created_at
		FROM transactions WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.RawTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

// CountUserTransactions counts a user's ledger rows. Feeds the coaching
// history gate.
func (s *SQLiteStorage) CountUserTransactions(ctx context.Context, userID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SupersedeTransaction links an old row to its replacement. This is the only
// mutation the ledger permits, and it refuses to run twice: history is never
// rewritten, only extended.
func (s *SQLiteStorage) SupersedeTransaction(ctx context.Context, oldID, newID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(oldID, "oldID"); err != nil {
		return err
	}
	if err := validateString(newID, "newID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET superseded_by = ?
		WHERE id = ? AND superseded_by IS NULL`, newID, oldID)
	if err != nil {
		return fmt.Errorf("failed to supersede transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check supersede result: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.GetTransaction(ctx, oldID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("transaction %s: %w", oldID, common.ErrSuperseded)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.RawTransaction, error) {
	var txn model.RawTransaction
	var sourceCC, superseded sql.NullString
	if err := row.Scan(&txn.ID, &txn.UserID, &txn.AmountMinor, &txn.Currency,
		&txn.Category, &txn.Merchant, &sourceCC, &superseded, &txn.CreatedAt); err != nil {
		return nil, err
	}
	txn.SourceCCID = sourceCC.String
	txn.SupersededBy = superseded.String
	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
