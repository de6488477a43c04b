package ipc

import (
	"sheetd/internal/daemon"
	"sheetd/internal/history"
)

// opResult carries the in-band failure of an operation: a descriptive
// message for display plus a structured kind for programmatic handling.
// Operation failures are not RPC transport errors.
type opResult struct {
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Failed reports whether the operation carried an error.
func (r *opResult) Failed() bool { return r.Error != "" }

// Err returns the message, empty when the operation succeeded.
func (r *opResult) Err() string { return r.Error }

// Kind returns the structured error kind, empty on success.
func (r *opResult) Kind() string { return r.ErrorKind }

// SheetsRequest names a workbook for the sheets resource.
type SheetsRequest struct {
	Path string `json:"path"`
}

// SheetsResponse is the sheets resource payload.
type SheetsResponse struct {
	opResult
	File      string   `json:"file"`
	SizeBytes int64    `json:"size_bytes"`
	Sheets    []string `json:"sheets"`
}

// SheetDataRequest names one sheet for the sheet resource.
type SheetDataRequest struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet"`
}

// SheetDataResponse carries the sheet's rows as a JSON array of row
// objects, column order preserved, dates in ISO 8601.
type SheetDataResponse struct {
	opResult
	JSON string `json:"json"`
}

// ReadRequest renders one sheet, or every sheet when Sheet is empty.
type ReadRequest struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet"`
}

// ReadResponse carries the textual rendering.
type ReadResponse struct {
	opResult
	Text string `json:"text"`
}

// QueryRequest filters a sheet's rows with a predicate expression.
type QueryRequest struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet"`
	Query string `json:"query"`
}

// QueryResponse carries the matching rows rendered as text.
type QueryResponse struct {
	opResult
	Text string `json:"text"`
}

// UpdateCellRequest addresses a cell by 1-based row number and Excel-style
// column letter.
type UpdateCellRequest struct {
	Path   string `json:"path"`
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// UpdateCellResponse confirms the mutation.
type UpdateCellResponse struct {
	opResult
	Message string `json:"message"`
}

// AddRowRequest appends one row of values.
type AddRowRequest struct {
	Path   string   `json:"path"`
	Sheet  string   `json:"sheet"`
	Values []string `json:"values"`
}

// AddRowResponse confirms the mutation.
type AddRowResponse struct {
	opResult
	Message string `json:"message"`
}

// CreateSheetRequest creates a new sheet with header columns.
type CreateSheetRequest struct {
	Path    string   `json:"path"`
	Sheet   string   `json:"sheet"`
	Headers []string `json:"headers"`
}

// CreateSheetResponse confirms the mutation.
type CreateSheetResponse struct {
	opResult
	Message string `json:"message"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse reports daemon runtime information.
type StatusResponse struct {
	Status daemon.Status `json:"status"`
}

// HistoryRequest lists recorded mutations, newest first.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse carries history records.
type HistoryResponse struct {
	opResult
	Records []history.Record `json:"records"`
}

// HistoryClearRequest removes all history records.
type HistoryClearRequest struct{}

// HistoryClearResponse reports the number of removed records.
type HistoryClearResponse struct {
	opResult
	Removed int64 `json:"removed"`
}
