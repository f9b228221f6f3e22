package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/extractor"
	"github.com/khorochbd/khoroch/internal/overlay"
	"github.com/khorochbd/khoroch/internal/pipeline"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the decision pipeline worker pool",
		Long: `Read messages from stdin (one per line, "user_id<TAB>text" or just text
for a default user) and run them through the decision pipeline. The real
deployment feeds the same pipeline from the messaging webhook queue; this
command is the local harness for it.`,
		RunE: runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

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

	slog.Info("Pipeline starting",
		"mode", cfg.Mode,
		"scope", cfg.Scope,
		"workers", cfg.Workers,
		"tau_high", cfg.TauHigh,
		"tau_low", cfg.TauLow)

	messages := make(chan pipeline.Message, cfg.QueueSize)
	go func() {
		defer close(messages)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			userID := "local"
			text := line
			if parts := strings.SplitN(line, "\t", 2); len(parts) == 2 {
				userID, text = parts[0], parts[1]
			}
			select {
			case <-ctx.Done():
				return
			case messages <- pipeline.Message{
				UserID:     userID,
				MessageID:  uuid.NewString(),
				Text:       text,
				ReceivedAt: time.Now().UTC(),
				IsNewUser:  true,
			}:
			}
		}
	}()

	return p.Run(ctx, messages, stdoutResponder{})
}

// stdoutResponder prints replies; the production responder is the messaging
// platform adapter.
type stdoutResponder struct{}

func (stdoutResponder) Respond(_ context.Context, userID, _, reply string) error {
	fmt.Printf("[%s] %s\n", userID, reply)
	return nil
}
