package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook generates an xlsx file whose Sheet1 holds the given grid,
// first row included as-is (callers put headers there). It returns the file
// path.
func WriteWorkbook(t testing.TB, dir string, grid [][]string) string {
	t.Helper()
	return WriteWorkbookSheets(t, dir, map[string][][]string{"Sheet1": grid})
}

// WriteWorkbookSheets generates an xlsx file with one sheet per map entry.
// excelize's default Sheet1 is reused for the first sheet or renamed when the
// map has no "Sheet1" key.
func WriteWorkbookSheets(t testing.TB, dir string, sheets map[string][][]string) string {
	t.Helper()

	path := filepath.Join(dir, "book.xlsx")
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			t.Fatalf("close workbook: %v", err)
		}
	}()

	for name, grid := range sheets {
		if name != "Sheet1" {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet %q: %v", name, err)
			}
		}
		for i := range grid {
			axis, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			row := append([]string(nil), grid[i]...)
			if err := f.SetSheetRow(name, axis, &row); err != nil {
				t.Fatalf("set row in %q: %v", name, err)
			}
		}
	}

	if _, ok := sheets["Sheet1"]; !ok {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			t.Fatalf("delete default sheet: %v", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
