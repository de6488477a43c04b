package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sheetd/internal/config"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("exists = true for missing file")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.SocketPath) {
		t.Fatalf("socket path not expanded: %q", cfg.Paths.SocketPath)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
socket_path = "` + dir + `/run/s.sock"
lock_path = "` + dir + `/run/s.lock"
log_dir = ""
history_db = "` + dir + `/h.db"

[logging]
level = "DEBUG"
format = "JSON"

[query]
max_rows = 50
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Query.MaxRows != 50 {
		t.Fatalf("max_rows = %d", cfg.Query.MaxRows)
	}
	if cfg.LogFilePath() != "" {
		t.Fatalf("empty log_dir should disable file logging, got %q", cfg.LogFilePath())
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for bad format")
	}
}

func TestValidateNegativeMaxRows(t *testing.T) {
	cfg := config.Default()
	cfg.Query.MaxRows = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max_rows")
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SocketPath = filepath.Join(dir, "run", "s.sock")
	cfg.Paths.LockPath = filepath.Join(dir, "run", "s.lock")
	cfg.Paths.HistoryDB = filepath.Join(dir, "data", "h.db")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{filepath.Join(dir, "run"), filepath.Join(dir, "data"), filepath.Join(dir, "logs")} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s missing: %v", d, err)
		}
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home: %v", err)
	}
	got, err := config.ExpandPath("~/x")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, home) {
		t.Fatalf("ExpandPath(~/x) = %q, want under %q", got, home)
	}
}
