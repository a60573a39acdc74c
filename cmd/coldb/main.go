package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kartikbazzad/coldb/internal/batch"
	"github.com/kartikbazzad/coldb/internal/config"
	"github.com/kartikbazzad/coldb/internal/ipc"
	"github.com/kartikbazzad/coldb/internal/logger"
	"github.com/kartikbazzad/coldb/internal/metrics"
	"github.com/kartikbazzad/coldb/internal/store"
)

func main() {
	dataDir := flag.String("data-dir", "", "Directory for persisted CSV files (overrides env)")
	socketPath := flag.String("socket", "", "Unix socket path (overrides env)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus listen address (overrides env, empty = disabled)")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := config.DefaultConfig()
	if err := config.Load("COLDB_", cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *socketPath != "" {
		cfg.IPC.SocketPath = *socketPath
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = *metricsAddr
	}

	logr := logger.Default()
	logr.SetColors(true)
	logr.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if *debugMode {
		logr.SetLevel(logger.LevelDebug)
	}

	logr.Info("Starting coldb...")
	logr.Info("Data directory: %s", cfg.DataDir)
	logr.Info("Socket: %s", cfg.IPC.SocketPath)

	st := store.New(cfg, logr)
	queue := batch.New()
	server := ipc.NewServer(cfg, logr, st, queue)

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	if cfg.Metrics.Enabled {
		go func() {
			logr.Info("Metrics listening on %s", cfg.Metrics.ListenAddr)
			if err := metrics.Serve(cfg.Metrics.ListenAddr); err != nil {
				logr.Error("Metrics listener failed: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logr.Info("Shutting down on signal...")
	case <-server.Done():
		logr.Info("Shutting down on client request...")
	}

	if err := server.Stop(); err != nil {
		logr.Error("Error during shutdown: %v", err)
	}

	logr.Info("coldb stopped")
	os.Exit(0)
}
