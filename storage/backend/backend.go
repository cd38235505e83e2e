// Package backend opens the storage.Store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"eventfriend_server/config"
	"eventfriend_server/storage"
	"eventfriend_server/storage/dynamo"
	"eventfriend_server/storage/sqlstore"
)

// Open returns the store for cfg.StorageBackend.
func Open(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		slog.Info("Opening SQLite store", "path", cfg.SQLitePath)
		store, err := sqlstore.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendPostgres:
		slog.Info("Opening Postgres store")
		store, err := sqlstore.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendDynamoDB:
		slog.Info("Initializing DynamoDB client...", "region", cfg.AWSRegion, "endpoint", cfg.DynamoDBEndpoint)
		client, err := dynamo.InitializeDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		slog.Info("DynamoDB client initialized.")
		return dynamo.New(client, cfg.DynamoDBTablePrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
