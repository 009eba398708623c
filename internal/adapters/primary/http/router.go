package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/it-support-portal/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/it-support-portal/internal/adapters/primary/websocket"
	"github.com/lorrc/it-support-portal/internal/config"
	"github.com/lorrc/it-support-portal/internal/core/pages"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   ports.TicketStore
	Storage HealthChecker
	Hub     *wsAdapter.Hub

	// Optional; nil disables the corresponding limit.
	GeneralLimiter *mw.RateLimiter
	FormLimiter    *mw.RateLimiter
}

// NewRouter wires handlers and middleware into a chi router.
func NewRouter(deps RouterDeps) (http.Handler, error) {
	cfg, logger := deps.Config, deps.Logger

	errorHandler := NewErrorHandler(logger)
	controller := pages.NewController(deps.Store, logger)

	pageHandler, err := NewPageHandler(deps.Store, controller, logger)
	if err != nil {
		return nil, err
	}
	ticketHandler := NewTicketHandler(deps.Store, errorHandler, logger)
	healthOpts := []HealthOption{WithTicketStats(deps.Store)}
	if deps.Hub != nil {
		healthOpts = append(healthOpts, WithClientCount(deps.Hub))
	}
	healthHandler := NewHealthHandler(deps.Storage, cfg.Storage.Backend, cfg.App.Version, healthOpts...)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))

	if deps.GeneralLimiter != nil {
		r.Use(deps.GeneralLimiter.Handler(errorHandler.Handle))
	}

	// Health check endpoints live outside /api/v1
	healthHandler.RegisterRoutes(r)

	var writeMW []func(http.Handler) http.Handler
	if deps.FormLimiter != nil {
		writeMW = append(writeMW, deps.FormLimiter.Handler(errorHandler.Handle))
	}

	// Server-rendered portal
	pageHandler.RegisterRoutes(r, writeMW...)

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins(cfg),
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", mw.RequestIDHeader},
			ExposedHeaders:   []string{mw.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		if deps.Hub != nil {
			r.Get("/ws", NewWebSocketHandler(deps.Hub, cfg, logger).ServeHTTP)
		}

		r.Route("/tickets", func(r chi.Router) {
			ticketHandler.RegisterRoutes(r, writeMW...)
		})
	})

	return r, nil
}

func corsOrigins(cfg *config.Config) []string {
	if len(cfg.WebSocket.AllowedOrigins) > 0 {
		return cfg.WebSocket.AllowedOrigins
	}
	if cfg.IsDevelopment() {
		return []string{"*"}
	}
	return nil
}
