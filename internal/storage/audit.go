package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

// AppendCC writes a canonical command to the audit log. Insert-if-absent:
// a repeated identical cc_id is a no-op, which is what makes webhook-retry
// replay idempotent.
func (s *SQLiteStorage) AppendCC(ctx context.Context, cc *model.CanonicalCommand) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCC(cc); err != nil {
		return err
	}

	slots, err := json.Marshal(cc.Slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO cc_audit
			(cc_id, user_id, message_id, received_at, intent, slots, confidence, decision, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cc.CCID, cc.UserID, cc.MessageID, cc.ReceivedAt.UTC(), string(cc.Intent),
		string(slots), cc.Confidence, string(cc.Decision), cc.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to append canonical command: %w", err)
	}
	return nil
}

// GetCC retrieves one canonical command by id.
func (s *SQLiteStorage) GetCC(ctx context.Context, ccID string) (*model.CanonicalCommand, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ccID, "ccID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT cc_id, user_id, message_id, received_at, intent, slots, confidence, decision, schema_version
		FROM cc_audit WHERE cc_id = ?`, ccID)

	cc, err := scanCC(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("canonical command %s: %w", ccID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get canonical command: %w", err)
	}
	return cc, nil
}

// GetUserCCs returns a user's commands within [from, to], in insertion order.
func (s *SQLiteStorage) GetUserCCs(ctx context.Context, userID string, from, to time.Time) ([]model.CanonicalCommand, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %v before %v", to, from)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cc_id, user_id, message_id, received_at, intent, slots, confidence, decision, schema_version
		FROM cc_audit
		WHERE user_id = ? AND received_at >= ? AND received_at <= ?
		ORDER BY rowid`, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query canonical commands: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ccs []model.CanonicalCommand
	for rows.Next() {
		cc, err := scanCC(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan canonical command: %w", err)
		}
		ccs = append(ccs, *cc)
	}
	return ccs, rows.Err()
}

// PurgeCCsBefore deletes audit rows older than the cutoff. Purge never
// touches the raw ledger.
func (s *SQLiteStorage) PurgeCCsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cc_audit WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit log: %w", err)
	}
	return res.RowsAffected()
}

func scanCC(row rowScanner) (*model.CanonicalCommand, error) {
	var cc model.CanonicalCommand
	var intent, decision, slots string
	if err := row.Scan(&cc.CCID, &cc.UserID, &cc.MessageID, &cc.ReceivedAt,
		&intent, &slots, &cc.Confidence, &decision, &cc.SchemaVersion); err != nil {
		return nil, err
	}
	cc.Intent = model.Intent(intent)
	cc.Decision = model.Decision(decision)
	if err := json.Unmarshal([]byte(slots), &cc.Slots); err != nil {
		return nil, fmt.Errorf("corrupt slots payload for %s: %w", cc.CCID, err)
	}
	return &cc, nil
}
