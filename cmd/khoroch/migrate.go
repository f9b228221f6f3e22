package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/khorochbd/khoroch/internal/cli"
	"github.com/khorochbd/khoroch/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("Starting database migration", "database", cfg.DBPath)

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fmt.Println(cli.SuccessStyle.Render(
		fmt.Sprintf("schema at version %d", storage.ExpectedSchemaVersion)))
	return nil
}

func purgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Purge audit rows past the retention window",
		Long: `Delete canonical commands older than the configured retention TTL.
Purge never touches the raw ledger; transactions outlive their audit
trail.`,
		RunE: runPurge,
	}
	cmd.Flags().Bool("dry-run", false, "report what would be purged without deleting")
	return cmd
}

func runPurge(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cutoff := time.Now().UTC().Add(-cfg.AuditRetention)
	if dryRun {
		fmt.Printf("would purge audit rows created before %s\n", cutoff.Format(time.RFC3339))
		return nil
	}

	purged, err := store.PurgeCCsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("purged %d audit rows", purged)))
	return nil
}
