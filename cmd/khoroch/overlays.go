package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/cli"
	"github.com/khorochbd/khoroch/internal/model"
	"github.com/khorochbd/khoroch/internal/overlay"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage standing categorization rules",
	}
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesToggleCmd())
	return cmd
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a rule",
		RunE:  runRulesAdd,
	}
	cmd.Flags().String("user", "", "owning user id (required)")
	cmd.Flags().String("merchant", "", "merchant substring predicate")
	cmd.Flags().String("category", "", "category predicate")
	cmd.Flags().String("field", "category", "field to rewrite (category, merchant, currency)")
	cmd.Flags().String("value", "", "value to apply (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func runRulesAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")
	merchant, _ := cmd.Flags().GetString("merchant")
	category, _ := cmd.Flags().GetString("category")
	field, _ := cmd.Flags().GetString("field")
	value, _ := cmd.Flags().GetString("value")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rule := &model.Rule{
		UserID:        userID,
		MerchantMatch: merchant,
		CategoryMatch: category,
		ApplyField:    model.OverlayField(field),
		ApplyValue:    value,
		Active:        true,
	}
	resolver := overlay.NewResolver(store, cfg.ResolveCacheTTL)
	if err := resolver.SaveRule(ctx, rule); err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("rule %d created", rule.ID)))
	return nil
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's rules, active and inactive",
		RunE:  runRulesList,
	}
	cmd.Flags().String("user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rules, err := store.ListUserRules(ctx, userID)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Println(cli.SubtleStyle.Render("no rules"))
		return nil
	}
	for i := range rules {
		r := &rules[i]
		state := cli.SuccessStyle.Render("active")
		if !r.Active {
			state = cli.SubtleStyle.Render("inactive")
		}
		fmt.Printf("%4d  %s  merchant~%q category=%q -> %s=%q\n",
			r.ID, state, r.MerchantMatch, r.CategoryMatch, r.ApplyField, r.ApplyValue)
	}
	return nil
}

func rulesToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle [rule-id]",
		Short: "Activate or deactivate a rule (rules are never deleted)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRulesToggle,
	}
	cmd.Flags().Bool("active", true, "desired state")
	cmd.Flags().String("user", "", "owning user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runRulesToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	active, _ := cmd.Flags().GetBool("active")
	userID, _ := cmd.Flags().GetString("user")

	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid rule id %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	resolver := overlay.NewResolver(store, cfg.ResolveCacheTTL)
	if err := resolver.SetRuleActive(ctx, userID, id, active); err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("rule %d active=%v", id, active)))
	return nil
}

func correctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Manage per-transaction corrections",
	}
	cmd.AddCommand(correctionsAddCmd())
	cmd.AddCommand(correctionsListCmd())
	return cmd
}

func correctionsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [transaction-id]",
		Short: "Correct one field of a recorded transaction",
		Long: `Record a correction overlay. The raw transaction row is immutable; the
correction changes only the effective view returned by resolve.`,
		Args: cobra.ExactArgs(1),
		RunE: runCorrectionsAdd,
	}
	cmd.Flags().String("user", "", "correcting user id (required)")
	cmd.Flags().String("field", "category", "field to correct (category, merchant, currency)")
	cmd.Flags().String("value", "", "corrected value (required)")
	cmd.Flags().String("reason", "", "optional reason, kept for audit")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func runCorrectionsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")
	field, _ := cmd.Flags().GetString("field")
	value, _ := cmd.Flags().GetString("value")
	reason, _ := cmd.Flags().GetString("reason")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	c := &model.Correction{
		UserID:              userID,
		TargetTransactionID: args[0],
		Field:               model.OverlayField(field),
		NewValue:            value,
		Reason:              reason,
	}
	resolver := overlay.NewResolver(store, cfg.ResolveCacheTTL)
	if err := resolver.SaveCorrection(ctx, c); err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("correction %d recorded", c.ID)))
	return nil
}

func correctionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's corrections",
		RunE:  runCorrectionsList,
	}
	cmd.Flags().String("user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runCorrectionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	corrections, err := store.ListUserCorrections(ctx, userID)
	if err != nil {
		return err
	}
	if len(corrections) == 0 {
		fmt.Println(cli.SubtleStyle.Render("no corrections"))
		return nil
	}
	for i := range corrections {
		c := &corrections[i]
		fmt.Printf("%4d  txn=%s  %s=%q  %s\n",
			c.ID, c.TargetTransactionID, c.Field, c.NewValue,
			c.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
