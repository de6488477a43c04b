package render_test

import (
	"strings"
	"testing"

	"sheetd/internal/render"
	"sheetd/internal/workbook"
)

func TestTableIncludesHeaderAndCells(t *testing.T) {
	out := render.Table(&workbook.Table{
		Columns: []string{"Name", "Qty"},
		Rows:    [][]string{{"widget", "3"}, {"gadget", "7"}},
	})

	for _, want := range []string{"Name", "Qty", "widget", "gadget", "7"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestTableEmpty(t *testing.T) {
	if out := render.Table(&workbook.Table{}); out != "(empty sheet)" {
		t.Fatalf("empty table rendered as %q", out)
	}
	if out := render.Table(nil); out != "(empty sheet)" {
		t.Fatalf("nil table rendered as %q", out)
	}
}

func TestSheetsOrderAndHeaders(t *testing.T) {
	tables := map[string]*workbook.Table{
		"First":  {Columns: []string{"A"}, Rows: [][]string{{"1"}}},
		"Second": {Columns: []string{"B"}, Rows: [][]string{{"2"}}},
	}
	out := render.Sheets([]string{"First", "Second"}, tables)

	first := strings.Index(out, "Sheet: First")
	second := strings.Index(out, "Sheet: Second")
	if first < 0 || second < 0 {
		t.Fatalf("missing sheet headers:\n%s", out)
	}
	if first > second {
		t.Fatal("sheet order not preserved")
	}
}
