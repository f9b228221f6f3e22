package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/cli"
	"github.com/khorochbd/khoroch/internal/decision"
	"github.com/khorochbd/khoroch/internal/model"
)

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-decide stored commands under the current thresholds",
		Long: `Replay a user's audit log through the decision engine with the
currently configured thresholds and report every command whose outcome
would change. Run this in SHADOW before flipping the mode: it is the
cheap way to see what a threshold change does to real traffic.

No ledger or audit rows are written; replay is strictly read-only.`,
		RunE: runReplay,
	}
	cmd.Flags().String("user", "", "user whose history to replay (required)")
	cmd.Flags().Duration("since", 30*24*time.Hour, "history window")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runReplay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")
	since, _ := cmd.Flags().GetDuration("since")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	now := time.Now().UTC()
	ccs, err := store.GetUserCCs(ctx, userID, now.Add(-since), now)
	if err != nil {
		return err
	}
	if len(ccs) == 0 {
		fmt.Println(cli.SubtleStyle.Render("nothing to replay"))
		return nil
	}

	engine := decision.New(cfg.TauHigh, cfg.TauLow)
	bar := progressbar.Default(int64(len(ccs)), "replaying")

	var changed []model.CanonicalCommand
	for i := range ccs {
		cc := ccs[i]
		if cc.SchemaVersion != model.SchemaVersion {
			// Replay refuses to reinterpret commands written under another
			// schema without an explicit migration.
			return fmt.Errorf("cc %s has schema %s, current is %s: migrate before replaying",
				cc.CCID, cc.SchemaVersion, model.SchemaVersion)
		}
		if engine.Decide(cc) != cc.Decision {
			cc.Decision = engine.Decide(cc)
			changed = append(changed, cc)
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\n%d of %d decisions would change under tau_high=%.2f tau_low=%.2f\n",
		len(changed), len(ccs), cfg.TauHigh, cfg.TauLow)
	if len(changed) > 0 {
		fmt.Println(cli.RenderCCTable(changed))
	}
	return nil
}
