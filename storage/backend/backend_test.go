package backend

import (
	"context"
	"path/filepath"
	"testing"

	"eventfriend_server/config"
)

func TestOpen(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Config{StorageBackend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "app.db")}
		store, err := Open(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer store.Close()
		events, err := store.ListEvents(context.Background())
		if err != nil || len(events) != 0 {
			t.Errorf("events=%v err=%v", events, err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, err := Open(context.Background(), config.Config{StorageBackend: "mongo"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
