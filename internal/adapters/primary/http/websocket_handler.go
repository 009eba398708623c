package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/lorrc/it-support-portal/internal/adapters/primary/websocket"
	"github.com/lorrc/it-support-portal/internal/config"
)

// WebSocketHandler upgrades dashboard connections onto the live ticket feed.
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	timings  wsAdapter.Timings
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler builds the upgrader from the websocket settings. In
// development every origin is accepted.
func NewWebSocketHandler(hub *wsAdapter.Hub, cfg *config.Config, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub: hub,
		timings: wsAdapter.Timings{
			PingPeriod: cfg.WebSocket.PingInterval,
			PongWait:   cfg.WebSocket.PongWait,
		},
		logger: logger.With("handler", "websocket"),
	}

	allowed := cfg.WebSocket.AllowedOrigins
	dev := cfg.IsDevelopment()
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if dev || originAllowed(origin, allowed) {
				return true
			}
			h.logger.WarnContext(r.Context(), "websocket origin rejected",
				"origin", origin,
				"remote_addr", r.RemoteAddr,
			)
			return false
		},
	}
	return h
}

// originAllowed matches an Origin header against entries that are full
// origins, bare hosts, or "*.example.com" wildcards. A missing Origin is a
// non-browser client and is allowed.
func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host

	for _, entry := range allowed {
		if eu, err := url.Parse(entry); err == nil && eu.Host != "" {
			entry = eu.Host
		}
		if suffix, ok := strings.CutPrefix(entry, "*"); ok && strings.HasPrefix(suffix, ".") {
			if strings.HasSuffix(host, suffix) || host == suffix[1:] {
				return true
			}
			continue
		}
		if host == entry {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := wsAdapter.NewClient(h.hub, conn, h.timings, h.logger)
	h.logger.InfoContext(r.Context(), "websocket connected",
		"client_id", client.ID,
		"remote_addr", r.RemoteAddr,
	)

	h.hub.Attach(client)
	go client.WritePump()
	go client.ReadPump()
}
