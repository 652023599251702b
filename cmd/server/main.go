package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/enerflow/compresor-report/internal/config"
	"github.com/enerflow/compresor-report/internal/logging"
	"github.com/enerflow/compresor-report/internal/store"
	"github.com/enerflow/compresor-report/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"batch_size", cfg.Extract.BatchSize,
		"row_limit", cfg.Extract.RowLimit,
		"max_concurrent", cfg.Upload.MaxConcurrent,
	)

	var runs *store.Store
	if cfg.Store.Path != "" {
		runs, err = store.Open(cfg.Store.Path)
		if err != nil {
			slog.Error("failed to open run store", "path", cfg.Store.Path, "error", err)
			os.Exit(1)
		}
		defer runs.Close()
		slog.Info("run history enabled", "path", cfg.Store.Path)
	} else {
		slog.Info("run history disabled")
	}

	server := web.NewServer(cfg, runs)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := server.ActiveJobs(); active > 0 {
			slog.Info("waiting for conversions to complete", "active", active)
			if err := server.WaitForJobs(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			} else {
				slog.Info("all conversions completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
