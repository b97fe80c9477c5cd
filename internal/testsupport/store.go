package testsupport

import (
	"context"
	"testing"

	"wemscribe/internal/config"
	"wemscribe/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewAsset inserts a pending asset item for tests using the provided store.
func NewAsset(t testing.TB, store *queue.Store, runID, filename, sourcePath string) *queue.Item {
	t.Helper()

	item, err := store.NewAsset(context.Background(), runID, filename, sourcePath)
	if err != nil {
		t.Fatalf("store.NewAsset: %v", err)
	}
	return item
}
