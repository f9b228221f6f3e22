package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/cli"
	"github.com/khorochbd/khoroch/internal/overlay"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [transaction-id]",
		Short: "Show a transaction's effective view next to its raw row",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
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

	raw, err := store.GetTransaction(ctx, args[0])
	if err != nil {
		return err
	}

	resolver := overlay.NewResolver(store, cfg.ResolveCacheTTL)
	eff, err := resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderEffective(raw, eff))
	return nil
}
