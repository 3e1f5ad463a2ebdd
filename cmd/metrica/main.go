package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metricadb/metrica/internal/config"
	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/queue"
	"github.com/metricadb/metrica/internal/router"
	"github.com/metricadb/metrica/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Metrica engine starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Initialize the in-memory store
	st := store.NewMemoryStore(cfg.Store.Retention, cfg.Store.SweepInterval, cfg.Store.MaxSamples, logger)
	defer func() { _ = st.Close() }()

	// Restore samples from the last snapshot, if one is configured
	if cfg.Store.SnapshotPath != "" {
		restored, err := st.LoadSnapshot(cfg.Store.SnapshotPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("Failed to load snapshot", "path", cfg.Store.SnapshotPath, "error", err)
			}
		} else {
			logger.Info("Snapshot restored", "path", cfg.Store.SnapshotPath, "samples", restored)
		}
		startSnapshotLoop(logger, st, cfg.Store)
	}

	// Consume samples from the queue in addition to HTTP ingest
	var consumer *queue.IngestConsumer
	if cfg.Queue.Enabled {
		logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
		subscriber, err := queue.NewSubscriber(cfg.Queue)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "error", err)
		}
		consumer = queue.NewIngestConsumer(logger, st, subscriber, cfg.Queue.Subject)
		if err := consumer.Start(); err != nil {
			logger.Fatal("Failed to start queue consumer", "error", err)
		}
		logger.Info("Queue ingest started", "subject", cfg.Queue.Subject)
	}

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	// Initialize router
	app := router.New(logger, st, *cfg)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.Error("Failed to stop queue consumer", "error", err)
		}
		logger.Info("Queue ingest stopped",
			"accepted", consumer.Accepted(), "rejected", consumer.Rejected())
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Final snapshot so a restart picks up where we left off
	if cfg.Store.SnapshotPath != "" {
		if err := st.SaveSnapshot(cfg.Store.SnapshotPath); err != nil {
			logger.Error("Failed to write final snapshot", "error", err)
		}
	}

	logger.Info("Server stopped")
}

// startSnapshotLoop persists the store on a fixed interval. Snapshot
// errors are logged and retried on the next tick.
func startSnapshotLoop(logger *logging.Logger, st *store.MemoryStore, cfg config.StoreConfig) {
	interval := cfg.SnapshotInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := st.SaveSnapshot(cfg.SnapshotPath); err != nil {
				logger.Error("Failed to write snapshot", "path", cfg.SnapshotPath, "error", err)
				continue
			}
			logger.Debug("Snapshot written", "path", cfg.SnapshotPath)
		}
	}()
}
