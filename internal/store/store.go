// Package store holds the process-wide workbook/sheet cache. It maps a
// normalized file path to an open workbook handle plus the sheet tables
// materialized from it, and keeps the in-memory table authoritative for a
// sheet until the path is invalidated.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xuri/excelize/v2"

	"sheetd/internal/logging"
	"sheetd/internal/pathkey"
	"sheetd/internal/workbook"
)

// ErrFileAccess marks workbook open failures (missing file, permissions,
// corrupt format).
var ErrFileAccess = errors.New("workbook not accessible")

// ErrSheetNotFound marks references to sheets absent from a workbook's
// directory.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrDuplicateSheet marks attempts to create a sheet under a name that
// already exists.
var ErrDuplicateSheet = errors.New("sheet already exists")

// Store caches open workbook handles and materialized sheet tables keyed by
// normalized path. All access to one path is serialized by a per-path lock,
// so concurrent dispatch against the same file is safe.
type Store struct {
	logger *slog.Logger

	mu    sync.Mutex
	books map[string]*entry
}

type entry struct {
	mu     sync.Mutex
	file   *excelize.File
	sheets map[string]*workbook.Table
}

// New constructs an empty cache. The cache owns the workbook handles it
// opens; they stay open until Invalidate or Close.
func New(logger *slog.Logger) *Store {
	return &Store{
		logger: logging.NewComponentLogger(logger, "store"),
		books:  make(map[string]*entry),
	}
}

func (s *Store) entryFor(path string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.books[path]
	if !ok {
		e = &entry{sheets: make(map[string]*workbook.Table)}
		s.books[path] = e
	}
	return e
}

// ensureFile opens the workbook if the entry has no live handle. Callers
// hold e.mu.
func (e *entry) ensureFile(path string) error {
	if e.file != nil {
		return nil
	}
	f, err := workbook.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	e.file = f
	return nil
}

// ensureTable materializes a sheet table if absent. Callers hold e.mu.
func (e *entry) ensureTable(path, sheet string) (*workbook.Table, error) {
	if err := e.ensureFile(path); err != nil {
		return nil, err
	}
	if t, ok := e.sheets[sheet]; ok {
		return t, nil
	}
	if !sheetExists(e.file, sheet) {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
	}
	t, err := workbook.ReadTable(e.file, sheet)
	if err != nil {
		return nil, err
	}
	e.sheets[sheet] = t
	return t, nil
}

// drop closes the handle and forgets every materialized table. Callers hold
// e.mu.
func (e *entry) drop() {
	if e.file != nil {
		_ = e.file.Close()
		e.file = nil
	}
	e.sheets = make(map[string]*workbook.Table)
}

func sheetExists(f *excelize.File, sheet string) bool {
	for _, name := range f.GetSheetList() {
		if name == sheet {
			return true
		}
	}
	return false
}

// SheetNames returns the workbook's sheet directory in file order, opening
// the workbook on first touch.
func (s *Store) SheetNames(path string) ([]string, error) {
	path = pathkey.Normalize(path)
	e := s.entryFor(path)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureFile(path); err != nil {
		return nil, err
	}
	return append([]string(nil), workbook.SheetNames(e.file)...), nil
}

// Snapshot returns a deep copy of the materialized sheet table, reading it
// through the cache on first touch.
func (s *Store) Snapshot(path, sheet string) (*workbook.Table, error) {
	path = pathkey.Normalize(path)
	e := s.entryFor(path)
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.ensureTable(path, sheet)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// Mutate materializes the sheet, applies fn to the cached table, and writes
// the whole sheet back through the cached handle. If fn fails the table and
// the file are untouched. If the write-back fails the path is invalidated so
// memory cannot silently diverge from disk.
func (s *Store) Mutate(path, sheet string, fn func(*workbook.Table) error) error {
	path = pathkey.Normalize(path)
	e := s.entryFor(path)
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.ensureTable(path, sheet)
	if err != nil {
		return err
	}

	// Apply against a scratch copy so a failed mutation leaves the cached
	// table exactly as it was.
	scratch := t.Clone()
	if err := fn(scratch); err != nil {
		return err
	}

	if err := workbook.WriteTable(e.file, sheet, scratch); err != nil {
		e.drop()
		s.logger.Warn("write-back failed, path invalidated",
			logging.String("path", path),
			logging.String("sheet", sheet),
			logging.Error(err))
		return fmt.Errorf("write sheet %q back to %s: %w", sheet, path, err)
	}

	e.sheets[sheet] = scratch
	s.logger.Debug("sheet written back",
		logging.String("path", path),
		logging.String("sheet", sheet),
		logging.Int("rows", len(scratch.Rows)))
	return nil
}

// CreateSheet appends a new sheet with the given headers and no data rows,
// then invalidates the path so the next access re-reads the sheet directory
// from disk.
func (s *Store) CreateSheet(path, sheet string, headers []string) error {
	path = pathkey.Normalize(path)
	e := s.entryFor(path)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureFile(path); err != nil {
		return err
	}
	if sheetExists(e.file, sheet) {
		return fmt.Errorf("%w: %q in %s", ErrDuplicateSheet, sheet, path)
	}
	if err := workbook.AppendSheet(e.file, sheet, headers); err != nil {
		e.drop()
		return fmt.Errorf("append sheet %q to %s: %w", sheet, path, err)
	}

	// Structural change: drop the handle and every table for this path.
	e.drop()
	s.logger.Debug("sheet created, path invalidated",
		logging.String("path", path),
		logging.String("sheet", sheet))
	return nil
}

// Invalidate drops the workbook handle and all sheet tables for a path.
func (s *Store) Invalidate(path string) {
	path = pathkey.Normalize(path)
	s.mu.Lock()
	e, ok := s.books[path]
	if ok {
		delete(s.books, path)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.drop()
	e.mu.Unlock()
}

// OpenWorkbooks reports how many paths currently hold a live handle.
func (s *Store) OpenWorkbooks() int {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.books))
	for _, e := range s.books {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	open := 0
	for _, e := range entries {
		e.mu.Lock()
		if e.file != nil {
			open++
		}
		e.mu.Unlock()
	}
	return open
}

// Close drops every cached entry and closes all handles.
func (s *Store) Close() {
	s.mu.Lock()
	books := s.books
	s.books = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range books {
		e.mu.Lock()
		e.drop()
		e.mu.Unlock()
	}
}
