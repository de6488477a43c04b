package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sheetd/internal/logging"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sheetd.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("hello", logging.String("k", "v"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"k":"v"`) {
		t.Fatalf("log file missing structured attr: %s", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNopLoggerIsSilentAndSafe(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("ignored", logging.Error(nil))
	logging.NewComponentLogger(nil, "x").Info("still fine")
}
