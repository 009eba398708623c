package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/it-support-portal/internal/core/domain"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

// Transport-level event types. Store events come from domain.
const (
	EventSnapshot domain.EventType = "SNAPSHOT"
	EventPong     domain.EventType = "PONG"
)

// eventQueueSize bounds events waiting for the hub loop.
const eventQueueSize = 256

// CountsFunc reports the current ticket tally.
type CountsFunc func() domain.TicketCounts

// Hub fans ticket events out to every connected dashboard. All client set
// changes happen on the Run goroutine.
type Hub struct {
	events     chan domain.Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	clients map[*Client]struct{}
	counts  CountsFunc

	logger *slog.Logger
}

var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates an idle hub. Start it with Run.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		events:     make(chan domain.Event, eventQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// SetCounts installs the source of the snapshot sent to new clients. Without
// one no snapshot is sent.
func (h *Hub) SetCounts(fn CountsFunc) {
	h.mu.Lock()
	h.counts = fn
	h.mu.Unlock()
}

// Attach hands a client to the hub. Blocks until Run accepts it; once Run has
// returned the client is closed straight away.
func (h *Hub) Attach(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.CloseSend()
	}
}

// Detach removes a client and closes its Send channel. Detaching twice, or
// after Run has returned, is harmless.
func (h *Hub) Detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.CloseSend()
	}
}

// Broadcast queues an event without blocking; when the queue is full the
// event is dropped and logged.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("event queue full, dropping event",
			"event_type", event.Type,
			"ticket_id", event.TicketID,
		)
	}
	return nil
}

// Run is the hub loop. It returns when ctx is done, closing every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.closeAll()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case event := <-h.events:
			h.fanOut(event)
		}
	}
}

// snapshot is the current tally, or false without a counts source.
func (h *Hub) snapshot() (domain.Event, bool) {
	h.mu.RLock()
	fn := h.counts
	h.mu.RUnlock()

	if fn == nil {
		return domain.Event{}, false
	}
	return domain.Event{Type: EventSnapshot, Counts: fn()}, true
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	if event, ok := h.snapshot(); ok {
		c.offer(event)
	}
	h.logger.Info("client attached", "client_id", c.ID, "total_connections", total)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.CloseSend()
	h.logger.Info("client detached", "client_id", c.ID)
}

func (h *Hub) fanOut(event domain.Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"ticket_id", event.TicketID,
		"client_count", len(targets),
	)

	for _, c := range targets {
		if !c.offer(event) {
			h.logger.Warn("client too slow, detaching", "client_id", c.ID)
			h.remove(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.CloseSend()
	}
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
