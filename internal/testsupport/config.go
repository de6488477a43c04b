package testsupport

import (
	"path/filepath"
	"testing"

	"sheetd/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test.
// File logging is disabled; tests use a nop logger.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SocketPath = filepath.Join(base, "sheetd.sock")
	cfg.Paths.LockPath = filepath.Join(base, "sheetd.lock")
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfg.Paths.LogDir = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithMaxRows overrides the query row cap on the test config.
func WithMaxRows(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Query.MaxRows = limit
	}
}
