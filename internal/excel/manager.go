// Package excel implements the remote-callable spreadsheet operations: the
// read and query surface, the three mutations, and the two resource views.
// All cached access goes through the workbook store; read_excel deliberately
// bypasses it to reflect current on-disk content.
package excel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"sheetd/internal/history"
	"sheetd/internal/logging"
	"sheetd/internal/pathkey"
	"sheetd/internal/query"
	"sheetd/internal/render"
	"sheetd/internal/store"
	"sheetd/internal/workbook"
)

// Manager coordinates the spreadsheet operations over the shared cache.
type Manager struct {
	store   *store.Store
	hist    *history.Store
	logger  *slog.Logger
	maxRows int
}

// New constructs a manager. hist may be nil to disable mutation history.
// maxRows caps query results (0 means unlimited).
func New(s *store.Store, hist *history.Store, logger *slog.Logger, maxRows int) *Manager {
	return &Manager{
		store:   s,
		hist:    hist,
		logger:  logging.NewComponentLogger(logger, "excel"),
		maxRows: maxRows,
	}
}

// SheetList is the sheets resource payload.
type SheetList struct {
	File      string   `json:"file"`
	SizeBytes int64    `json:"size_bytes"`
	Sheets    []string `json:"sheets"`
}

// Record is one sheet row as column name to value pairs. It marshals to a
// JSON object preserving column order.
type Record struct {
	Columns []string
	Values  []string
}

// Get returns the value for a column, with ok=false for unknown columns.
func (r Record) Get(column string) (string, bool) {
	for i, col := range r.Columns {
		if col == column {
			return r.Values[i], true
		}
	}
	return "", false
}

// MarshalJSON renders the record as an object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return []byte(buf.String()), nil
}

// ListSheets returns the workbook's ordered sheet directory, opening the
// workbook through the cache on first touch.
func (m *Manager) ListSheets(ctx context.Context, path string) (SheetList, error) {
	_ = ctx
	normalized := pathkey.Normalize(path)
	names, err := m.store.SheetNames(normalized)
	if err != nil {
		return SheetList{}, wrap(KindNone, "list sheets in", normalized, "", err)
	}

	var size int64
	if info, statErr := os.Stat(normalized); statErr == nil {
		size = info.Size()
	}
	return SheetList{File: normalized, SizeBytes: size, Sheets: names}, nil
}

// SheetRecords returns the materialized sheet as ordered row records.
func (m *Manager) SheetRecords(ctx context.Context, path, sheet string) ([]Record, error) {
	_ = ctx
	normalized := pathkey.Normalize(path)
	table, err := m.store.Snapshot(normalized, sheet)
	if err != nil {
		return nil, wrap(KindNone, "read sheet", normalized, sheet, err)
	}

	records := make([]Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, Record{Columns: table.Columns, Values: row})
	}
	return records, nil
}

// ReadWorkbook renders one sheet, or every sheet when sheet is empty, as
// text. It reads straight from disk on every call so the output always
// reflects current on-disk content, unlike the cached operations.
func (m *Manager) ReadWorkbook(ctx context.Context, path, sheet string) (string, error) {
	_ = ctx
	normalized := pathkey.Normalize(path)

	f, err := workbook.Open(normalized)
	if err != nil {
		return "", wrap(KindFileAccess, "read workbook", normalized, "", err)
	}
	defer f.Close()

	names := workbook.SheetNames(f)
	if sheet != "" {
		if !contains(names, sheet) {
			return "", wrap(KindSheetNotFound, "read workbook", normalized, sheet,
				fmt.Errorf("%w: %q", store.ErrSheetNotFound, sheet))
		}
		table, err := workbook.ReadTable(f, sheet)
		if err != nil {
			return "", wrap(KindInternal, "read workbook", normalized, sheet, err)
		}
		return render.Table(table), nil
	}

	tables := make(map[string]*workbook.Table, len(names))
	for _, name := range names {
		table, err := workbook.ReadTable(f, name)
		if err != nil {
			return "", wrap(KindInternal, "read workbook", normalized, name, err)
		}
		tables[name] = table
	}
	return render.Sheets(names, tables), nil
}

// QueryRows evaluates a predicate expression against every row of the
// cached sheet and renders the matches as text.
func (m *Manager) QueryRows(ctx context.Context, path, sheet, expr string) (string, error) {
	_ = ctx
	normalized := pathkey.Normalize(path)

	pred, err := query.Compile(expr)
	if err != nil {
		return "", wrap(KindQuery, "compile query for", normalized, sheet, err)
	}

	table, err := m.store.Snapshot(normalized, sheet)
	if err != nil {
		return "", wrap(KindNone, "query sheet", normalized, sheet, err)
	}

	matched := &workbook.Table{Columns: table.Columns}
	row := make(map[string]string, len(table.Columns))
	for _, cells := range table.Rows {
		for i, col := range table.Columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		ok, evalErr := pred.Eval(row)
		if evalErr != nil {
			return "", wrap(KindQuery, "evaluate query against", normalized, sheet, evalErr)
		}
		if !ok {
			continue
		}
		matched.Rows = append(matched.Rows, cells)
		if m.maxRows > 0 && len(matched.Rows) >= m.maxRows {
			break
		}
	}

	m.logger.Debug("query evaluated",
		logging.String("path", normalized),
		logging.String("sheet", sheet),
		logging.String("query", pred.Source()),
		logging.Int("matches", len(matched.Rows)))
	return render.Table(matched), nil
}

// UpdateCell sets one cell addressed by a 1-based row number and an
// Excel-style column letter, then writes the sheet back.
func (m *Manager) UpdateCell(ctx context.Context, path, sheet string, row int, column, value string) (string, error) {
	normalized := pathkey.Normalize(path)

	colIdx, err := workbook.ColumnIndex(column)
	if err != nil {
		return "", wrap(KindIndexOutOfRange, "update cell in", normalized, sheet, err)
	}
	if row < 1 {
		return "", wrap(KindIndexOutOfRange, "update cell in", normalized, sheet,
			fmt.Errorf("row %d out of range (rows are 1-based)", row))
	}

	err = m.store.Mutate(normalized, sheet, func(t *workbook.Table) error {
		if row > len(t.Rows) {
			return &Error{Kind: KindIndexOutOfRange, Op: "update cell in", Path: normalized, Sheet: sheet,
				Err: fmt.Errorf("row %d out of range (sheet has %d data rows)", row, len(t.Rows))}
		}
		if colIdx >= len(t.Columns) {
			return &Error{Kind: KindIndexOutOfRange, Op: "update cell in", Path: normalized, Sheet: sheet,
				Err: fmt.Errorf("column %s out of range (sheet has %d columns)", strings.ToUpper(column), len(t.Columns))}
		}
		t.Rows[row-1][colIdx] = value
		return nil
	})
	if err != nil {
		return "", wrap(KindNone, "update cell in", normalized, sheet, err)
	}

	cell := fmt.Sprintf("%s%d", strings.ToUpper(strings.TrimSpace(column)), row)
	m.recordMutation(ctx, "update_cell", normalized, sheet, fmt.Sprintf("%s = %q", cell, value))
	return fmt.Sprintf("Updated cell %s to '%s' in sheet '%s'", cell, value, sheet), nil
}

// AddRow appends values as the sheet's new last row. The value count must
// match the sheet's column count exactly; the underlying writer would
// silently misalign otherwise.
func (m *Manager) AddRow(ctx context.Context, path, sheet string, values []string) (string, error) {
	normalized := pathkey.Normalize(path)

	err := m.store.Mutate(normalized, sheet, func(t *workbook.Table) error {
		if len(values) != len(t.Columns) {
			return &Error{Kind: KindColumnCountMismatch, Op: "add row to", Path: normalized, Sheet: sheet,
				Err: fmt.Errorf("got %d values for %d columns", len(values), len(t.Columns))}
		}
		t.Rows = append(t.Rows, append([]string(nil), values...))
		return nil
	})
	if err != nil {
		return "", wrap(KindNone, "add row to", normalized, sheet, err)
	}

	m.recordMutation(ctx, "add_row", normalized, sheet, fmt.Sprintf("%d values", len(values)))
	return fmt.Sprintf("Added new row to sheet '%s'", sheet), nil
}

// CreateSheet appends a new sheet with the given headers and no data rows,
// invalidating the path so subsequent reads see the new sheet directory.
func (m *Manager) CreateSheet(ctx context.Context, path, sheet string, headers []string) (string, error) {
	normalized := pathkey.Normalize(path)

	if err := m.store.CreateSheet(normalized, sheet, headers); err != nil {
		return "", wrap(KindNone, "create sheet in", normalized, sheet, err)
	}

	m.recordMutation(ctx, "create_sheet", normalized, sheet, "headers: "+strings.Join(headers, ", "))
	return fmt.Sprintf("Created new sheet '%s' with headers: %s", sheet, strings.Join(headers, ", ")), nil
}

func (m *Manager) recordMutation(ctx context.Context, op, path, sheet, detail string) {
	if err := m.hist.Append(ctx, op, path, sheet, detail); err != nil {
		m.logger.Warn("history record failed",
			logging.String("op", op),
			logging.String("path", path),
			logging.Error(err))
	}
}

func contains(names []string, want string) bool {
	for _, name := range names {
		if name == want {
			return true
		}
	}
	return false
}
