package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/cli"
	"github.com/khorochbd/khoroch/internal/model"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the canonical command audit log",
		Long: `Look up canonical commands by id or list a user's command history in
insertion order. This is the read surface the replay tooling and the
"show original vs corrected" transparency view consume.`,
		RunE: runAudit,
	}
	cmd.Flags().String("cc-id", "", "look up a single command by id")
	cmd.Flags().String("user", "", "list commands for this user")
	cmd.Flags().Duration("since", 24*time.Hour, "history window when listing by user")
	return cmd
}

func runAudit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ccID, _ := cmd.Flags().GetString("cc-id")
	userID, _ := cmd.Flags().GetString("user")
	since, _ := cmd.Flags().GetDuration("since")

	if ccID == "" && userID == "" {
		return fmt.Errorf("either --cc-id or --user is required")
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

	var ccs []model.CanonicalCommand
	if ccID != "" {
		cc, err := store.GetCC(ctx, ccID)
		if err != nil {
			return err
		}
		ccs = []model.CanonicalCommand{*cc}
	} else {
		now := time.Now().UTC()
		ccs, err = store.GetUserCCs(ctx, userID, now.Add(-since), now)
		if err != nil {
			return err
		}
	}

	fmt.Println(cli.RenderCCTable(ccs))
	return nil
}
