package testsupport

import (
	"path/filepath"
	"testing"

	"ziptowebp/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = ""
	cfg.Conversion.Workers = 4

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWorkers overrides the transcode pool size.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conversion.Workers = n
	}
}

// WithPlacement overrides where Output/ and Converted_Zip/ are created.
func WithPlacement(placement string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conversion.Placement = placement
	}
}

// WithHistory toggles the SQLite ledger.
func WithHistory(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = enabled
	}
}
