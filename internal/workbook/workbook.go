// Package workbook wraps excelize with the small tabular model the rest of
// the daemon works in: the first row of a sheet is its header, everything
// below is data.
package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Table is the in-memory materialization of one sheet: ordered rows of
// cells under named columns. Cell values are strings; date-typed cells are
// serialized as RFC 3339 on read.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cp := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp.Rows[i] = append([]string(nil), row...)
	}
	return cp
}

// Open opens a spreadsheet file for reading and writing.
func Open(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return f, nil
}

// SheetNames returns the workbook's sheet directory in file order.
func SheetNames(f *excelize.File) []string {
	return f.GetSheetList()
}

// ReadTable materializes a sheet into a Table. Rows shorter than the header
// are padded so every row has one cell per column; excelize drops trailing
// empty cells and the rest of the daemon relies on rectangular tables.
func ReadTable(f *excelize.File, sheet string) (*Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	table := &Table{Columns: append([]string(nil), rows[0]...)}
	width := len(table.Columns)
	for i, row := range rows[1:] {
		cells := make([]string, width)
		for c := 0; c < width && c < len(row); c++ {
			cells[c] = row[c]
		}
		for c := range cells {
			if v, ok := dateCellValue(f, sheet, c+1, i+2); ok {
				cells[c] = v
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

// dateCellValue converts a date-typed cell to RFC 3339. Column and row are
// 1-based sheet coordinates.
func dateCellValue(f *excelize.File, sheet string, col, row int) (string, bool) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil || cellType != excelize.CellTypeDate {
		return "", false
	}
	raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", false
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Stored as an ISO-like string already.
		if ts, perr := time.Parse(time.RFC3339, raw); perr == nil {
			return ts.UTC().Format(time.RFC3339), true
		}
		return "", false
	}
	ts, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", false
	}
	return ts.UTC().Format(time.RFC3339), true
}

// WriteTable rewrites a single sheet from the table, leaving every other
// sheet in the file untouched, and saves the workbook in place.
func WriteTable(f *excelize.File, sheet string, table *Table) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("locate sheet %q: %w", sheet, err)
	}
	if idx == -1 {
		return fmt.Errorf("sheet %q not present in workbook", sheet)
	}

	existing, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q before rewrite: %w", sheet, err)
	}
	for i := len(existing); i >= 1; i-- {
		if err := f.RemoveRow(sheet, i); err != nil {
			return fmt.Errorf("clear sheet %q row %d: %w", sheet, i, err)
		}
	}

	header := append([]string(nil), table.Columns...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}
	for i := range table.Rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("address row %d of %q: %w", i+2, sheet, err)
		}
		row := append([]string(nil), table.Rows[i]...)
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, sheet, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// AppendSheet adds a new sheet with a header row and no data rows, then
// saves the workbook. Callers check for duplicate names first.
func AppendSheet(f *excelize.File, sheet string, headers []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	header := append([]string(nil), headers...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// ColumnIndex resolves an Excel-style column letter (A, B, ..., Z, AA, ...)
// to its zero-based index.
func ColumnIndex(letter string) (int, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(letter))
	if trimmed == "" {
		return 0, fmt.Errorf("empty column letter")
	}
	n, err := excelize.ColumnNameToNumber(trimmed)
	if err != nil {
		return 0, fmt.Errorf("column letter %q: %w", letter, err)
	}
	return n - 1, nil
}
