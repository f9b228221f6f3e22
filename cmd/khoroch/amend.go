package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/cli"
	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

func amendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amend [transaction-id]",
		Short: "Replace a transaction's amount with a superseding row",
		Long: `Amount and currency live on the immutable raw row, so fixing them is not
an overlay: amend writes a replacement transaction and marks the original
as superseded by it. The original row is never edited or deleted, and a
row can only be superseded once.`,
		Args: cobra.ExactArgs(1),
		RunE: runAmend,
	}
	cmd.Flags().Int64("amount", 0, "corrected amount in minor units (required)")
	cmd.Flags().String("currency", "", "corrected currency (default: keep)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runAmend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	amount, _ := cmd.Flags().GetInt64("amount")
	currency, _ := cmd.Flags().GetString("currency")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	original, err := store.GetTransaction(ctx, args[0])
	if err != nil {
		return err
	}
	if original.Superseded() {
		return common.NewUserError(
			fmt.Sprintf("transaction %s was already amended; amend its replacement %s instead",
				original.ID, original.SupersededBy),
			common.ErrSuperseded)
	}

	if currency == "" {
		currency = original.Currency
	}
	replacement := &model.RawTransaction{
		ID:          uuid.NewString(),
		UserID:      original.UserID,
		AmountMinor: amount,
		Currency:    currency,
		Category:    original.Category,
		Merchant:    original.Merchant,
		SourceCCID:  original.SourceCCID,
	}
	if err := store.SaveTransaction(ctx, replacement); err != nil {
		return err
	}
	if err := store.SupersedeTransaction(ctx, original.ID, replacement.ID); err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(
		fmt.Sprintf("%s superseded by %s", original.ID, replacement.ID)))
	return nil
}
