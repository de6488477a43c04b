// Package render produces the human-readable text form of sheet tables.
package render

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sheetd/internal/workbook"
)

// Table renders one sheet table. Columns are left-aligned; cells missing
// from a short row render empty.
func Table(t *workbook.Table) string {
	if t == nil || len(t.Columns) == 0 {
		return "(empty sheet)"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		r := make(table.Row, len(t.Columns))
		for i := range t.Columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(t.Columns))
	for i := range t.Columns {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// Sheets renders several sheets in order, each preceded by a "Sheet: <name>"
// header, separated by blank lines.
func Sheets(names []string, tables map[string]*workbook.Table) string {
	sections := make([]string, 0, len(names))
	for _, name := range names {
		sections = append(sections, "Sheet: "+name+"\n"+Table(tables[name]))
	}
	return strings.Join(sections, "\n\n")
}
