// Package main implements the entry point for the capture worker,
// which drains a queue of captured snippets, turns each one into a
// Markdown note via an LLM, and archives the result.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/capture-worker/internal/archive"
	"github.com/phrazzld/capture-worker/internal/config"
	"github.com/phrazzld/capture-worker/internal/notify"
	"github.com/phrazzld/capture-worker/internal/platform/gcs"
	"github.com/phrazzld/capture-worker/internal/platform/gemini"
	"github.com/phrazzld/capture-worker/internal/platform/logger"
	"github.com/phrazzld/capture-worker/internal/platform/postgres"
	"github.com/phrazzld/capture-worker/internal/worker"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, worker.ErrFatalShutdown) {
			// A fatal processing error already notified the operator;
			// exit non-zero so supervisors do not restart into the same
			// misconfiguration.
			log.Fatalf("worker halted on fatal error: %v", err)
		}
		log.Fatalf("worker terminated: %v", err)
	}
}

// run wires the application together and blocks until the dispatch loop
// stops. A nil return means a clean, signal-driven shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Worker)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database connection", "error", err)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	generator, err := gemini.NewGeminiGenerator(ctx, appLogger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	blobs, err := gcs.NewBlobStore(ctx, appLogger, cfg.Blob)
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}
	defer blobs.Close()

	writer, err := archive.NewWriter(cfg.Worker.ArchiveDir)
	if err != nil {
		return fmt.Errorf("failed to create archive writer: %w", err)
	}

	notifier := notify.NewNotifier(cfg.Notify)
	queue := postgres.NewQueueStore(db, cfg.Database.URL, appLogger)

	processor, err := worker.NewProcessor(
		queue,
		generator,
		blobs,
		writer,
		notifier,
		appLogger,
		cfg.Worker.SpoolDir,
		worker.Timeouts{
			Fetch:    cfg.Worker.FetchTimeout,
			Generate: cfg.Worker.GenerateTimeout,
			Store:    cfg.Worker.StoreTimeout,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}

	listener, err := worker.NewListener(queue, processor, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	slog.Info("Capture worker starting",
		"archive_dir", cfg.Worker.ArchiveDir,
		"model", cfg.LLM.ModelName,
		"log_level", cfg.Worker.LogLevel)

	if err := listener.Run(ctx); err != nil {
		return err
	}

	appLogger.Info("worker shutdown complete")
	return nil
}
