// Package daemon ties the workbook cache, the mutation history, and the
// single-instance lock into one lifecycle.
package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofrs/flock"

	"sheetd/internal/config"
	"sheetd/internal/history"
	"sheetd/internal/logging"
	"sheetd/internal/store"
)

// Daemon owns the shared state behind the IPC surface and enforces
// single-instance execution via a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	hist   *history.Store

	lock   *flock.Flock
	locked bool
}

// Status represents daemon runtime information.
type Status struct {
	PID           int    `json:"pid"`
	SocketPath    string `json:"socket_path"`
	LockPath      string `json:"lock_path"`
	HistoryDBPath string `json:"history_db_path"`
	OpenWorkbooks int    `json:"open_workbooks"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, s *store.Store, hist *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || s == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "daemon"),
		store:  s,
		hist:   hist,
		lock:   flock.New(cfg.Paths.LockPath),
	}, nil
}

// Start acquires the single-instance lock. It fails fast when another
// daemon already holds it.
func (d *Daemon) Start() error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.cfg.Paths.LockPath, err)
	}
	if !ok {
		return fmt.Errorf("another sheetd instance holds %s", d.cfg.Paths.LockPath)
	}
	d.locked = true
	d.logger.Info("daemon started",
		logging.String("lock", d.cfg.Paths.LockPath),
		logging.String("socket", d.cfg.Paths.SocketPath))
	return nil
}

// Status reports runtime information for the status RPC.
func (d *Daemon) Status() Status {
	return Status{
		PID:           os.Getpid(),
		SocketPath:    d.cfg.Paths.SocketPath,
		LockPath:      d.cfg.Paths.LockPath,
		HistoryDBPath: d.hist.Path(),
		OpenWorkbooks: d.store.OpenWorkbooks(),
	}
}

// Close releases the lock and tears down the cache and history store.
func (d *Daemon) Close() {
	d.store.Close()
	if err := d.hist.Close(); err != nil {
		d.logger.Warn("close history store", logging.Error(err))
	}
	if d.locked {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release daemon lock", logging.Error(err))
		}
		d.locked = false
	}
}
