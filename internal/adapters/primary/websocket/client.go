package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lorrc/it-support-portal/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
	sendBufferSize = 256

	defaultPongWait = 60 * time.Second
)

// Timings controls the keep-alive cadence of a connection.
type Timings struct {
	PingPeriod time.Duration // must be less than PongWait
	PongWait   time.Duration
}

func (t Timings) withDefaults() Timings {
	if t.PongWait <= 0 {
		t.PongWait = defaultPongWait
	}
	if t.PingPeriod <= 0 || t.PingPeriod >= t.PongWait {
		t.PingPeriod = (t.PongWait * 9) / 10
	}
	return t
}

// Client is one dashboard connection. The feed is push-only; the peer may
// send PING or COUNTS requests and nothing else.
type Client struct {
	ID   uuid.UUID
	Send chan domain.Event

	hub     *Hub
	conn    *websocket.Conn
	timings Timings
	logger  *slog.Logger

	// guards Send against a late offer racing the close
	sendMu sync.Mutex
	closed bool
}

// NewClient wraps conn. conn may be nil when the client is only used to
// receive from the hub.
func NewClient(hub *Hub, conn *websocket.Conn, timings Timings, logger *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		ID:      id,
		Send:    make(chan domain.Event, sendBufferSize),
		hub:     hub,
		conn:    conn,
		timings: timings.withDefaults(),
		logger:  logger.With("client_id", id.String()),
	}
}

// CloseSend closes Send exactly once. Later offers are dropped.
func (c *Client) CloseSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// offer queues event unless the buffer is full or Send is closed.
func (c *Client) offer(event domain.Event) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- event:
		return true
	default:
		return false
	}
}

// ReadPump reads peer messages until the connection drops, then detaches.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Detach(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(c.timings.PongWait)) }
	if err := extend(); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		c.handleIncomingMessage(message)
	}
}

// WritePump writes queued events and keep-alive pings until Send closes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.timings.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Debug("failed to write event", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// ClientMessage is a request from the peer.
type ClientMessage struct {
	Type string `json:"type"`
}

func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("ignoring malformed client message", "error", err)
		return
	}

	switch msg.Type {
	case "PING":
		c.offer(domain.Event{Type: EventPong})
	case "COUNTS":
		if event, ok := c.hub.snapshot(); ok {
			c.offer(event)
		}
	default:
		c.logger.Debug("ignoring unknown message type", "type", msg.Type)
	}
}
