package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/cli"
	"github.com/khorochbd/khoroch/internal/extractor"
	"github.com/khorochbd/khoroch/internal/model"
	"github.com/khorochbd/khoroch/internal/overlay"
	"github.com/khorochbd/khoroch/internal/pipeline"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [message text]",
		Short: "Run one message through the pipeline and print the outcome",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runProcess,
	}
	cmd.Flags().String("user", "local", "user id to process as")
	cmd.Flags().String("message-id", "", "message id (default: random; reuse one to test idempotency)")
	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")
	userID, _ := cmd.Flags().GetString("user")
	messageID, _ := cmd.Flags().GetString("message-id")
	if messageID == "" {
		messageID = uuid.NewString()
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
	p := pipeline.New(cfg, store, extractor.NewRegex(), resolver)

	result, err := p.Process(ctx, pipeline.Message{
		UserID:     userID,
		MessageID:  messageID,
		Text:       text,
		ReceivedAt: time.Now().UTC(),
		IsNewUser:  true,
	})
	if err != nil {
		return err
	}

	if result.CC != nil {
		cc := result.CC
		fmt.Println(cli.TitleStyle.Render("Decision"))
		fmt.Printf("  cc_id:      %s\n", cc.CCID)
		fmt.Printf("  intent:     %s\n", cc.Intent)
		fmt.Printf("  confidence: %.2f\n", cc.Confidence)
		fmt.Printf("  decision:   %s\n", cli.DecisionStyle(cc.Decision).Render(string(cc.Decision)))
		fmt.Printf("  ledger:     %d write(s)\n", result.LedgerWrites)
	} else {
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("pipeline gated (mode=%s); no command produced", cfg.Mode)))
	}

	if cfg.Mode.UserVisible() || result.Legacy || cfg.Mode == model.ModeShadow {
		fmt.Printf("\nreply: %s\n", result.Reply)
	}
	return nil
}
