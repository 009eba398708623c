package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/lorrc/it-support-portal/internal/adapters/primary/http"
	mw "github.com/lorrc/it-support-portal/internal/adapters/primary/http/middleware"
	"github.com/lorrc/it-support-portal/internal/adapters/primary/websocket"
	"github.com/lorrc/it-support-portal/internal/adapters/secondary/storage"
	"github.com/lorrc/it-support-portal/internal/config"
	"github.com/lorrc/it-support-portal/internal/core/domain"
	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/services"
	"github.com/lorrc/it-support-portal/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	// 3. Open Ticket Storage
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	// 4. Real-time Hub
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// 5. Ticket Store (Core)
	store := services.NewTicketStore(kv,
		services.WithTimeLayout(cfg.Storage.TimeLayout),
		services.WithResetOnCorrupt(cfg.Storage.ResetOnCorrupt),
		services.WithBroadcaster(hub),
		services.WithLogger(logger),
	)
	if err := store.Load(ctx); err != nil {
		if errors.Is(err, apperrors.ErrCorruptStorage) {
			logger.Error("persisted tickets are malformed; fix or remove them, or set STORE_RESET_ON_CORRUPT=true",
				"backend", cfg.Storage.Backend,
				"error", err,
			)
		} else {
			logger.Error("failed to load tickets", "error", err)
		}
		os.Exit(1)
	}

	hub.SetCounts(func() domain.TicketCounts { return domain.CountTickets(store.All()) })

	if cfg.Storage.SeedDemo {
		n, err := services.SeedDemo(ctx, store)
		if err != nil {
			logger.Error("failed to seed demo tickets", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			logger.Info("seeded demo tickets", "count", n)
		}
	}

	// 6. Initialize Rate Limiters
	var generalRateLimiter, formRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			Name:              "general",
			Logger:            logger,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer generalRateLimiter.Stop()

		formRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			Name:              "form",
			Logger:            logger,
			RequestsPerSecond: cfg.RateLimit.FormRPS,
			BurstSize:         cfg.RateLimit.FormBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
		defer formRateLimiter.Stop()
	}

	// 7. Setup Router
	router, err := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Config:         cfg,
		Logger:         logger,
		Store:          store,
		Storage:        kv,
		Hub:            hub,
		GeneralLimiter: generalRateLimiter,
		FormLimiter:    formRateLimiter,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// flush the mirror once more so the last state is on disk
	if err := store.Persist(shutdownCtx); err != nil {
		logger.Error("final persist failed", "error", err)
	}

	logger.Info("server shutdown complete")
}
