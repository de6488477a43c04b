package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"sheetd/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestAppendAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	ops := []string{"update_cell", "add_row", "create_sheet"}
	for _, op := range ops {
		if err := s.Append(ctx, op, "/tmp/book.xlsx", "Sheet1", "detail for "+op); err != nil {
			t.Fatalf("Append(%s): %v", op, err)
		}
	}

	records, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != len(ops) {
		t.Fatalf("got %d records, want %d", len(records), len(ops))
	}
	// Newest first.
	if records[0].Op != "create_sheet" || records[2].Op != "update_cell" {
		t.Fatalf("unexpected order: %v", records)
	}
	if records[0].CreatedAt.IsZero() {
		t.Fatal("created_at not round-tripped")
	}
}

func TestListLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, "add_row", "/tmp/b.xlsx", "S", ""); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("limit ignored, got %d records", len(records))
	}
}

func TestClear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "update_cell", "/tmp/b.xlsx", "S", ""); err != nil {
		t.Fatal(err)
	}
	removed, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	records, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("records remain after clear: %v", records)
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *history.Store
	ctx := context.Background()
	if err := s.Append(ctx, "op", "p", "s", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
