package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/khorochbd/khoroch/internal/model"
)

// SaveCorrection appends a correction. The targeted raw row is read first so
// a correction can never point at a transaction that does not exist, and must
// belong to the correcting user: ownership is what ties the correction to the
// cache entries invalidated on write.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, c *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCorrection(c); err != nil {
		return err
	}

	txn, err := s.GetTransaction(ctx, c.TargetTransactionID)
	if err != nil {
		return err
	}
	if txn.UserID != c.UserID {
		return fmt.Errorf("transaction %s does not belong to user %s", c.TargetTransactionID, c.UserID)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (user_id, target_transaction_id, field, new_value, reason)
		VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.TargetTransactionID, string(c.Field), c.NewValue, c.Reason)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get correction id: %w", err)
	}
	c.ID = id
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// GetCorrections returns corrections for one transaction, oldest first.
func (s *SQLiteStorage) GetCorrections(ctx context.Context, transactionID string) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, target_transaction_id, field, new_value, reason, created_at
		FROM corrections WHERE target_transaction_id = ?
		ORDER BY created_at, id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Correction
	for rows.Next() {
		var c model.Correction
		var field string
		if err := rows.Scan(&c.ID, &c.UserID, &c.TargetTransactionID, &field,
			&c.NewValue, &c.Reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.Field = model.OverlayField(field)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListUserCorrections returns every correction a user has made, newest first.
func (s *SQLiteStorage) ListUserCorrections(ctx context.Context, userID string) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, target_transaction_id, field, new_value, reason, created_at
		FROM corrections WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Correction
	for rows.Next() {
		var c model.Correction
		var field string
		if err := rows.Scan(&c.ID, &c.UserID, &c.TargetTransactionID, &field,
			&c.NewValue, &c.Reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.Field = model.OverlayField(field)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveRule creates a standing rule.
func (s *SQLiteStorage) SaveRule(ctx context.Context, r *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(r); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (user_id, merchant_match, category_match, apply_field, apply_value, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.MerchantMatch, r.CategoryMatch, string(r.ApplyField), r.ApplyValue, r.Active)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule id: %w", err)
	}
	r.ID = id
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// SetRuleActive toggles a rule. Rules are never deleted; deactivation keeps
// the audit trail intact.
func (s *SQLiteStorage) SetRuleActive(ctx context.Context, id int64, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE rules SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to toggle rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rule toggle: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %d not found", id)
	}
	return nil
}

// GetActiveRules returns a user's active rules.
func (s *SQLiteStorage) GetActiveRules(ctx context.Context, userID string) ([]model.Rule, error) {
	return s.queryRules(ctx, userID, true)
}

// ListUserRules returns all of a user's rules including inactive ones.
func (s *SQLiteStorage) ListUserRules(ctx context.Context, userID string) ([]model.Rule, error) {
	return s.queryRules(ctx, userID, false)
}

func (s *SQLiteStorage) queryRules(ctx context.Context, userID string, activeOnly bool) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, merchant_match, category_match, apply_field, apply_value, is_active, created_at
		FROM rules WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Rule
	for rows.Next() {
		var r model.Rule
		var field string
		if err := rows.Scan(&r.ID, &r.UserID, &r.MerchantMatch, &r.CategoryMatch,
			&field, &r.ApplyValue, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.ApplyField = model.OverlayField(field)
		out = append(out, r)
	}
	return out, rows.Err()
}
