package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sheetd/internal/daemon"
	"sheetd/internal/excel"
	"sheetd/internal/ipc"
	"sheetd/internal/logging"
	"sheetd/internal/store"
	"sheetd/internal/testsupport"
)

func fixture(t *testing.T, dir string) string {
	t.Helper()
	return testsupport.WriteWorkbook(t, dir, [][]string{
		{"A", "B"},
		{"x", "1"},
		{"y", "2"},
	})
}

func newClient(t *testing.T) (*ipc.Client, string) {
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
			t.Skipf("skipping IPC test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client, dir
}

func TestEndToEnd(t *testing.T) {
	client, dir := newClient(t)
	path := fixture(t, dir)

	sheets, err := client.Sheets(path)
	if err != nil {
		t.Fatalf("Sheets RPC: %v", err)
	}
	if sheets.Failed() {
		t.Fatalf("Sheets failed: %s", sheets.Err())
	}
	if len(sheets.Sheets) != 1 || sheets.Sheets[0] != "Sheet1" {
		t.Fatalf("sheets = %v", sheets.Sheets)
	}
	if sheets.File != path {
		t.Fatalf("file = %q", sheets.File)
	}

	update, err := client.UpdateCell(path, "Sheet1", 2, "B", "99")
	if err != nil {
		t.Fatalf("UpdateCell RPC: %v", err)
	}
	if update.Failed() {
		t.Fatalf("UpdateCell failed: %s", update.Err())
	}
	if update.Message != "Updated cell B2 to '99' in sheet 'Sheet1'" {
		t.Fatalf("message = %q", update.Message)
	}

	data, err := client.SheetData(path, "Sheet1")
	if err != nil {
		t.Fatalf("SheetData RPC: %v", err)
	}
	if data.Failed() {
		t.Fatalf("SheetData failed: %s", data.Err())
	}
	want := `[{"A":"x","B":"1"},{"A":"y","B":"99"}]`
	if data.JSON != want {
		t.Fatalf("sheet data = %s, want %s", data.JSON, want)
	}

	queried, err := client.Query(path, "Sheet1", "B == '1'")
	if err != nil {
		t.Fatalf("Query RPC: %v", err)
	}
	if queried.Failed() {
		t.Fatalf("Query failed: %s", queried.Err())
	}
	if !strings.Contains(queried.Text, "x") || strings.Contains(queried.Text, "y") {
		t.Fatalf("query output:\n%s", queried.Text)
	}

	added, err := client.AddRow(path, "Sheet1", []string{"z", "3"})
	if err != nil {
		t.Fatalf("AddRow RPC: %v", err)
	}
	if added.Failed() {
		t.Fatalf("AddRow failed: %s", added.Err())
	}

	created, err := client.CreateSheet(path, "New", []string{"H1", "H2"})
	if err != nil {
		t.Fatalf("CreateSheet RPC: %v", err)
	}
	if created.Failed() {
		t.Fatalf("CreateSheet failed: %s", created.Err())
	}

	sheets, err = client.Sheets(path)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, name := range sheets.Sheets {
		if name == "New" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created sheet not listed: %v", sheets.Sheets)
	}

	read, err := client.Read(path, "")
	if err != nil {
		t.Fatalf("Read RPC: %v", err)
	}
	if read.Failed() {
		t.Fatalf("Read failed: %s", read.Err())
	}
	for _, wantText := range []string{"Sheet: Sheet1", "Sheet: New"} {
		if !strings.Contains(read.Text, wantText) {
			t.Fatalf("read output missing %q:\n%s", wantText, read.Text)
		}
	}

	hist, err := client.History(0)
	if err != nil {
		t.Fatalf("History RPC: %v", err)
	}
	if len(hist.Records) != 3 {
		t.Fatalf("history records = %d, want 3", len(hist.Records))
	}
	if hist.Records[0].Op != "create_sheet" {
		t.Fatalf("newest history record = %q", hist.Records[0].Op)
	}

	cleared, err := client.HistoryClear()
	if err != nil {
		t.Fatalf("HistoryClear RPC: %v", err)
	}
	if cleared.Removed != 3 {
		t.Fatalf("cleared = %d, want 3", cleared.Removed)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC: %v", err)
	}
	if status.Status.PID <= 0 {
		t.Fatalf("status pid = %d", status.Status.PID)
	}
	if status.Status.OpenWorkbooks < 1 {
		t.Fatalf("open workbooks = %d", status.Status.OpenWorkbooks)
	}
}

func TestErrorsAreInBand(t *testing.T) {
	client, dir := newClient(t)
	missing := filepath.Join(dir, "missing.xlsx")

	read, err := client.Read(missing, "")
	if err != nil {
		t.Fatalf("Read RPC returned transport error: %v", err)
	}
	if !read.Failed() {
		t.Fatal("expected in-band failure for missing file")
	}
	if !strings.HasPrefix(read.Err(), "Error reading Excel file:") {
		t.Fatalf("message = %q", read.Err())
	}
	if read.Kind() != string(excel.KindFileAccess) {
		t.Fatalf("kind = %q", read.Kind())
	}

	path := fixture(t, dir)

	update, err := client.UpdateCell(path, "Sheet1", 50, "B", "v")
	if err != nil {
		t.Fatal(err)
	}
	if update.Kind() != string(excel.KindIndexOutOfRange) {
		t.Fatalf("kind = %q, message = %q", update.Kind(), update.Err())
	}

	queried, err := client.Query(path, "Sheet1", "B ==")
	if err != nil {
		t.Fatal(err)
	}
	if queried.Kind() != string(excel.KindQuery) {
		t.Fatalf("kind = %q, message = %q", queried.Kind(), queried.Err())
	}
	if !strings.HasPrefix(queried.Err(), "Error querying Excel data:") {
		t.Fatalf("message = %q", queried.Err())
	}
}
