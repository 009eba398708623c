package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lorrc/it-support-portal/internal/adapters/primary/tui"
	"github.com/lorrc/it-support-portal/internal/adapters/secondary/storage"
	"github.com/lorrc/it-support-portal/internal/config"
	"github.com/lorrc/it-support-portal/internal/core/services"
	"github.com/lorrc/it-support-portal/internal/infrastructure/logging"
)

const logFile = "helpdesk-tui.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "helpdesk-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// the terminal belongs to the UI, so logs go to a file or nowhere
	var out io.Writer = io.Discard
	if cfg.Logging.Level == "debug" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      out,
		ServiceName: cfg.App.Name + "-tui",
		Environment: cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()

	store := services.NewTicketStore(kv,
		services.WithTimeLayout(cfg.Storage.TimeLayout),
		services.WithResetOnCorrupt(cfg.Storage.ResetOnCorrupt),
		services.WithLogger(logger),
	)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}
	if cfg.Storage.SeedDemo {
		if _, err := services.SeedDemo(ctx, store); err != nil {
			return fmt.Errorf("seed demo tickets: %w", err)
		}
	}

	return tui.Run(ctx, store, logger)
}
