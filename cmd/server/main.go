package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/pupilbridge/internal/config"
	"github.com/JonMunkholm/pupilbridge/internal/core"
	"github.com/JonMunkholm/pupilbridge/internal/core/tables"
	"github.com/JonMunkholm/pupilbridge/internal/logging"
	"github.com/JonMunkholm/pupilbridge/internal/store"
	"github.com/JonMunkholm/pupilbridge/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"postgres", cfg.Database.UsePostgres(),
		"max_concurrent_runs", cfg.Validation.MaxConcurrentRuns,
		"max_rows", cfg.Validation.MaxRows,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	// Open the correction rule store
	ctx := context.Background()
	rules, closeStore, err := store.Open(ctx, cfg.Database.URL, cfg.Database.SQLitePath,
		store.WithPoolLimits(cfg.Database.MaxConns, cfg.Database.MinConns,
			cfg.Database.MaxConnLifetime, cfg.Database.MaxConnIdleTime))
	if err != nil {
		slog.Error("failed to open rule store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if cfg.Database.UsePostgres() {
		slog.Info("rule store ready", "backend", "postgres")
	} else {
		slog.Info("rule store ready", "backend", "sqlite", "path", cfg.Database.SQLitePath)
	}

	// Import profiles
	registry := tables.NewRegistry()
	for _, p := range registry.All() {
		slog.Debug("import type registered", "import_type", p.ImportType, "columns", len(p.Columns))
	}
	slog.Info("import types registered", "count", registry.Len())

	limiter := core.NewLimiter(cfg.Validation.MaxConcurrentRuns, cfg.Validation.MaxWaitTime)
	server := web.NewServer(cfg, registry, limiter, rules)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests, then let running validations finish
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for validation runs to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("validation runs did not complete in time", "error", err)
			} else {
				slog.Info("all validation runs completed")
			}
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		closeStore()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
