// Command workflow-app runs the workflow editor backend: the REST API,
// the embedded workflow store, and optionally the cron scheduler.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdsal1508/workflow-app/internal/catalog"
	"github.com/abdsal1508/workflow-app/internal/logging"
	"github.com/abdsal1508/workflow-app/internal/runtime"
	"github.com/abdsal1508/workflow-app/internal/scheduler"
	"github.com/abdsal1508/workflow-app/internal/server"
	"github.com/abdsal1508/workflow-app/internal/store"
)

func main() {
	cfg := loadConfig()

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	st, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("store ready", slog.String("db_path", cfg.DBPath))

	cat := catalog.NewLoader(cfg.CatalogURL, logger).Load(ctx)

	var runner server.Runner
	var client *runtime.Client
	if cfg.RuntimeURL != "" {
		client = runtime.NewClient(cfg.RuntimeURL, logger)
		runner = client
	} else {
		logger.Warn("no runtime configured, test and activate endpoints disabled")
	}

	srv, err := server.New(st, cat, runner, logger)
	if err != nil {
		return err
	}

	if cfg.Scheduler {
		if client == nil {
			logger.Warn("scheduler enabled but no runtime configured, skipping")
		} else {
			sched := scheduler.New(st, client, cfg.schedulerInterval(), logger)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = sched.Stop() }()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.ListenAddr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLogger builds the process logger: JSON to stderr with correlation
// IDs injected from request contexts.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	inner := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}
