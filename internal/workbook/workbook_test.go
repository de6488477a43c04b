package workbook_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"sheetd/internal/workbook"
)

func writeFixture(t *testing.T, rows map[string][][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	f := excelize.NewFile()
	first := true
	for sheet, grid := range rows {
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("rename default sheet: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				t.Fatalf("new sheet %s: %v", sheet, err)
			}
		}
		for i := range grid {
			axis, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			row := append([]string(nil), grid[i]...)
			if err := f.SetSheetRow(sheet, axis, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestReadTablePadsShortRows(t *testing.T) {
	path := writeFixture(t, map[string][][]string{
		"Sheet1": {
			{"A", "B", "C"},
			{"x"},
			{"y", "2", "3"},
		},
	})

	f, err := workbook.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	table, err := workbook.ReadTable(f, "Sheet1")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !reflect.DeepEqual(table.Columns, []string{"A", "B", "C"}) {
		t.Fatalf("columns = %v", table.Columns)
	}
	want := [][]string{{"x", "", ""}, {"y", "2", "3"}}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Fatalf("rows = %v, want %v", table.Rows, want)
	}
}

func TestWriteTableReplacesOnlyTargetSheet(t *testing.T) {
	path := writeFixture(t, map[string][][]string{
		"Data":  {{"A", "B"}, {"1", "2"}, {"3", "4"}},
		"Other": {{"K"}, {"v"}},
	})

	f, err := workbook.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	table, err := workbook.ReadTable(f, "Data")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	table.Rows = [][]string{{"9", "8"}}
	if err := workbook.WriteTable(f, "Data", table); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := workbook.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	data, err := workbook.ReadTable(reopened, "Data")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(data.Rows, [][]string{{"9", "8"}}) {
		t.Fatalf("Data rows = %v", data.Rows)
	}
	other, err := workbook.ReadTable(reopened, "Other")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(other.Columns, []string{"K"}) || !reflect.DeepEqual(other.Rows, [][]string{{"v"}}) {
		t.Fatalf("Other sheet disturbed: %+v", other)
	}
}

func TestWriteTableShrinksGrid(t *testing.T) {
	path := writeFixture(t, map[string][][]string{
		"Data": {{"A"}, {"1"}, {"2"}, {"3"}},
	})

	f, err := workbook.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := workbook.WriteTable(f, "Data", &workbook.Table{Columns: []string{"A"}, Rows: [][]string{{"only"}}}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	table, err := workbook.ReadTable(f, "Data")
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "only" {
		t.Fatalf("stale rows survived rewrite: %v", table.Rows)
	}
}

func TestAppendSheet(t *testing.T) {
	path := writeFixture(t, map[string][][]string{
		"Sheet1": {{"A"}, {"1"}},
	})

	f, err := workbook.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := workbook.AppendSheet(f, "Budget", []string{"Item", "Cost"}); err != nil {
		t.Fatalf("AppendSheet: %v", err)
	}

	names := workbook.SheetNames(f)
	if !reflect.DeepEqual(names, []string{"Sheet1", "Budget"}) {
		t.Fatalf("sheet names = %v", names)
	}
	table, err := workbook.ReadTable(f, "Budget")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(table.Columns, []string{"Item", "Cost"}) || len(table.Rows) != 0 {
		t.Fatalf("new sheet content = %+v", table)
	}
}

func TestColumnIndexRoundTrip(t *testing.T) {
	// A..Z, AA..ZZ must resolve to 0..701.
	for n := 1; n <= 702; n++ {
		letter, err := excelize.ColumnNumberToName(n)
		if err != nil {
			t.Fatalf("ColumnNumberToName(%d): %v", n, err)
		}
		idx, err := workbook.ColumnIndex(letter)
		if err != nil {
			t.Fatalf("ColumnIndex(%q): %v", letter, err)
		}
		if idx != n-1 {
			t.Fatalf("ColumnIndex(%q) = %d, want %d", letter, idx, n-1)
		}
	}
}

func TestColumnIndexRejectsInvalid(t *testing.T) {
	for _, bad := range []string{"", "  ", "1A", "A1", "Ä"} {
		if _, err := workbook.ColumnIndex(bad); err == nil {
			t.Fatalf("ColumnIndex(%q) accepted invalid input", bad)
		}
	}
}

func TestTableClone(t *testing.T) {
	src := &workbook.Table{Columns: []string{"A"}, Rows: [][]string{{"1"}}}
	cp := src.Clone()
	cp.Rows[0][0] = "changed"
	if src.Rows[0][0] != "1" {
		t.Fatal("Clone shares row storage with source")
	}
}
