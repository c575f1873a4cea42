package testsupport

import (
	"testing"

	"ziptowebp/internal/config"
	"ziptowebp/internal/history"
)

// MustOpenHistory opens the history ledger for cfg and closes it at test cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
