package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"sheetd/internal/config"
	"sheetd/internal/daemon"
	"sheetd/internal/excel"
	"sheetd/internal/ipc"
	"sheetd/internal/logging"
	"sheetd/internal/store"
	"sheetd/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	socketPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	dir := t.TempDir()

	cfg := testsupport.NewConfig(t)

	logger := logging.NewNop()
	s := store.New(logger)
	t.Cleanup(s.Close)

	hist := testsupport.MustOpenHistory(t, cfg)

	mgr := excel.New(s, hist, logger, cfg.Query.MaxRows)
	d, err := daemon.New(cfg, s, hist, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, mgr, hist, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	return &cliTestEnv{cfg: cfg, socketPath: cfg.Paths.SocketPath, baseDir: dir}
}

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	return testsupport.WriteWorkbook(t, dir, [][]string{
		{"A", "B"},
		{"x", "1"},
		{"y", "2"},
	})
}

func runCLI(t *testing.T, args []string, socket string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
