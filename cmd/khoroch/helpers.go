package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/khorochbd/khoroch/internal/config"
	"github.com/khorochbd/khoroch/internal/service"
	"github.com/khorochbd/khoroch/internal/storage"
)

// loadConfig builds the immutable process configuration. A bad mode or
// threshold ordering fails here, before any command touches storage.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
