// sheetd serves spreadsheet read, query, and mutation operations over a
// unix domain socket.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"sheetd/internal/config"
	"sheetd/internal/daemon"
	"sheetd/internal/excel"
	"sheetd/internal/history"
	"sheetd/internal/ipc"
	"sheetd/internal/logging"
	"sheetd/internal/store"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.LogFilePath(),
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	cache := store.New(logger)

	hist, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		log.Fatalf("open history store: %v", err)
	}

	mgr := excel.New(cache, hist, logger, cfg.Query.MaxRows)

	d, err := daemon.New(cfg, cache, hist, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	if err := d.Start(); err != nil {
		log.Fatalf("start daemon: %v", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, mgr, hist, logger)
	if err != nil {
		log.Fatalf("start IPC server: %v", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-ctx.Done()
	logger.Info("sheetd shutting down")
}
