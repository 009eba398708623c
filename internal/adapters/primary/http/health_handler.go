package http

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/it-support-portal/internal/core/domain"
)

// HealthChecker is anything that can prove its backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// TicketLister exposes the in-memory ticket list for the detailed report.
type TicketLister interface {
	All() []domain.Ticket
	Counter() int64
}

// ClientCounter reports live websocket subscribers.
type ClientCounter interface {
	ClientCount() int
}

const pingTimeout = 3 * time.Second

// HealthHandler serves liveness, readiness and a detailed status report.
type HealthHandler struct {
	storage HealthChecker
	backend string
	version string
	started time.Time

	tickets TicketLister
	clients ClientCounter
}

// HealthOption adds optional sections to the detailed report.
type HealthOption func(*HealthHandler)

// WithTicketStats includes ticket counts in /health.
func WithTicketStats(t TicketLister) HealthOption {
	return func(h *HealthHandler) { h.tickets = t }
}

// WithClientCount includes the websocket subscriber count in /health.
func WithClientCount(c ClientCounter) HealthOption {
	return func(h *HealthHandler) { h.clients = c }
}

// NewHealthHandler reports on storage, the named backend, and any options.
func NewHealthHandler(storage HealthChecker, backend, version string, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		storage: storage,
		backend: backend,
		version: version,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DetailedHealth is the /health body.
type DetailedHealth struct {
	HealthResponse
	Tickets    *TicketStats `json:"tickets,omitempty"`
	Clients    *int         `json:"websocketClients,omitempty"`
	Goroutines int          `json:"goroutines"`
	HeapBytes  uint64       `json:"heapBytes"`
}

// TicketStats summarises the loaded ticket list.
type TicketStats struct {
	domain.TicketCounts
	NextID int64 `json:"nextId"`
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// HandleLiveness answers as long as the process serves HTTP.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness fails while the storage backend is unreachable.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := h.base(r.Context())
	WriteJSON(w, statusFor(resp), resp)
}

// HandleHealth is readiness plus ticket, websocket and runtime figures.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := DetailedHealth{
		HealthResponse: h.base(r.Context()),
		Goroutines:     runtime.NumGoroutine(),
		HeapBytes:      mem.HeapAlloc,
	}
	if h.tickets != nil {
		resp.Tickets = &TicketStats{
			TicketCounts: domain.CountTickets(h.tickets.All()),
			NextID:       h.tickets.Counter(),
		}
	}
	if h.clients != nil {
		n := h.clients.ClientCount()
		resp.Clients = &n
	}

	WriteJSON(w, statusFor(resp.HealthResponse), resp)
}

func (h *HealthHandler) base(ctx context.Context) HealthResponse {
	storage := h.checkStorage(ctx)
	status := "healthy"
	if storage.Status != "healthy" {
		status = "unhealthy"
	}
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Checks:    map[string]Check{"storage": storage},
	}
}

func statusFor(resp HealthResponse) int {
	if resp.Status != "healthy" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (h *HealthHandler) checkStorage(ctx context.Context) Check {
	if h.storage == nil {
		return Check{Status: "unhealthy", Message: "storage not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.storage.Ping(ctx)
	latency := time.Since(start).String()

	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency}
	}
	return Check{Status: "healthy", Message: h.backend, Latency: latency}
}
