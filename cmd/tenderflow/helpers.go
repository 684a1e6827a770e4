package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/atlas-conseil/tenderflow/internal/config"
	"github.com/atlas-conseil/tenderflow/internal/extraction"
	"github.com/atlas-conseil/tenderflow/internal/service"
	"github.com/atlas-conseil/tenderflow/internal/storage"
)

// initStorage opens the configured database and brings the schema up to
// date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initExtractor builds the extraction pipeline when a provider is
// configured; callers treat a nil extractor as extraction disabled.
func initExtractor(store service.Storage) (*extraction.Extractor, error) {
	apiKey := viper.GetString("extraction.api_key")
	if apiKey == "" {
		return nil, nil
	}

	client, err := extraction.NewClient(extraction.Config{
		Provider:    viper.GetString("extraction.provider"),
		APIKey:      apiKey,
		Model:       viper.GetString("extraction.model"),
		Temperature: viper.GetFloat64("extraction.temperature"),
		MaxTokens:   viper.GetInt("extraction.max_tokens"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction client: %w", err)
	}

	return extraction.NewExtractor(client, store), nil
}
