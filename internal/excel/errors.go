package excel

import (
	"errors"
	"fmt"

	"sheetd/internal/store"
)

// Kind classifies operation failures so callers can handle them
// programmatically instead of parsing message text.
type Kind string

const (
	KindNone                Kind = ""
	KindFileAccess          Kind = "file_access"
	KindSheetNotFound       Kind = "sheet_not_found"
	KindIndexOutOfRange     Kind = "index_out_of_range"
	KindColumnCountMismatch Kind = "column_count_mismatch"
	KindDuplicateSheet      Kind = "duplicate_sheet"
	KindQuery               Kind = "query"
	KindInternal            Kind = "internal"
)

// Error carries the failure kind alongside the operation context.
type Error struct {
	Kind  Kind
	Op    string
	Path  string
	Sheet string
	Err   error
}

func (e *Error) Error() string {
	target := e.Path
	if e.Sheet != "" {
		target += "#" + e.Sheet
	}
	if target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies any error returned by a Manager operation.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	switch {
	case errors.Is(err, store.ErrFileAccess):
		return KindFileAccess
	case errors.Is(err, store.ErrSheetNotFound):
		return KindSheetNotFound
	case errors.Is(err, store.ErrDuplicateSheet):
		return KindDuplicateSheet
	default:
		return KindInternal
	}
}

// wrap attaches operation context to err, classifying store sentinels when
// no explicit kind is given.
func wrap(kind Kind, op, path, sheet string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *Error
	if errors.As(err, &opErr) {
		return err
	}
	if kind == KindNone {
		kind = KindOf(err)
	}
	return &Error{Kind: kind, Op: op, Path: path, Sheet: sheet, Err: err}
}
