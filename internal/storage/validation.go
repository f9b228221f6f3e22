package storage

import (
	"context"
	"fmt"

	"github.com/khorochbd/khoroch/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return nil
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateTransaction(txn *model.RawTransaction) error {
	if txn == nil {
		return fmt.Errorf("transaction cannot be nil")
	}
	if txn.ID == "" {
		return fmt.Errorf("transaction id cannot be empty")
	}
	if txn.UserID == "" {
		return fmt.Errorf("transaction user_id cannot be empty")
	}
	if txn.AmountMinor <= 0 {
		return fmt.Errorf("transaction amount_minor must be positive, got %d", txn.AmountMinor)
	}
	if txn.Currency == "" {
		return fmt.Errorf("transaction currency cannot be empty")
	}
	return nil
}

func validateCC(cc *model.CanonicalCommand) error {
	if cc == nil {
		return fmt.Errorf("canonical command cannot be nil")
	}
	if cc.CCID == "" {
		return fmt.Errorf("cc_id cannot be empty")
	}
	if cc.UserID == "" || cc.MessageID == "" {
		return fmt.Errorf("canonical command missing identity fields")
	}
	if !cc.Intent.Valid() {
		return fmt.Errorf("invalid intent %q", cc.Intent)
	}
	if !cc.Decision.Valid() {
		return fmt.Errorf("invalid decision %q", cc.Decision)
	}
	if cc.SchemaVersion == "" {
		return fmt.Errorf("schema_version cannot be empty")
	}
	return nil
}

func validateCorrection(c *model.Correction) error {
	if c == nil {
		return fmt.Errorf("correction cannot be nil")
	}
	if c.UserID == "" {
		return fmt.Errorf("correction user_id cannot be empty")
	}
	if c.TargetTransactionID == "" {
		return fmt.Errorf("correction target_transaction_id cannot be empty")
	}
	if !c.Field.Valid() {
		return fmt.Errorf("correction field %q not overlayable", c.Field)
	}
	if c.NewValue == "" {
		return fmt.Errorf("correction new_value cannot be empty")
	}
	return nil
}

func validateRule(r *model.Rule) error {
	if r == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if r.UserID == "" {
		return fmt.Errorf("rule user_id cannot be empty")
	}
	if r.MerchantMatch == "" && r.CategoryMatch == "" {
		return fmt.Errorf("rule needs at least one predicate")
	}
	if !r.ApplyField.Valid() {
		return fmt.Errorf("rule apply_field %q not overlayable", r.ApplyField)
	}
	if r.ApplyValue == "" {
		return fmt.Errorf("rule apply_value cannot be empty")
	}
	return nil
}
