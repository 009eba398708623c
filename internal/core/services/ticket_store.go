package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lorrc/it-support-portal/internal/core/domain"
	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

// TicketStore owns the canonical ticket list and mirrors it to a key-value backend.
type TicketStore struct {
	kv          ports.KeyValueStore
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger

	now            func() time.Time
	timeLayout     string
	resetOnCorrupt bool

	mu      sync.RWMutex
	tickets []domain.Ticket
	counter int64
}

var _ ports.TicketStore = (*TicketStore)(nil)

// StoreOption configures a TicketStore.
type StoreOption func(*TicketStore)

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *TicketStore) { s.now = now }
}

// WithTimeLayout sets the layout used to render createdAt.
func WithTimeLayout(layout string) StoreOption {
	return func(s *TicketStore) {
		if layout != "" {
			s.timeLayout = layout
		}
	}
}

// WithResetOnCorrupt treats malformed persisted values as absent instead of failing Load.
func WithResetOnCorrupt(reset bool) StoreOption {
	return func(s *TicketStore) { s.resetOnCorrupt = reset }
}

// WithBroadcaster publishes an event after every successful mutation.
func WithBroadcaster(b ports.EventBroadcaster) StoreOption {
	return func(s *TicketStore) { s.broadcaster = b }
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *TicketStore) { s.logger = logger }
}

// NewTicketStore creates an empty store backed by kv. Call Load before use.
func NewTicketStore(kv ports.KeyValueStore, opts ...StoreOption) *TicketStore {
	s := &TicketStore{
		kv:         kv,
		logger:     slog.Default(),
		now:        time.Now,
		timeLayout: domain.DefaultTimeLayout,
		tickets:    []domain.Ticket{},
		counter:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "ticket_store")
	return s
}

// Load replaces the in-memory state with what the backend holds.
func (s *TicketStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := loadKey(ctx, s, ports.TicketsKey, []domain.Ticket{}, decodeTickets)
	if err != nil {
		return err
	}
	counter, err := loadKey(ctx, s, ports.TicketCounterKey, int64(1), decodeCounter)
	if err != nil {
		return err
	}

	// keep counter > max id even if the two keys drifted apart
	for _, t := range tickets {
		if t.ID >= counter {
			counter = t.ID + 1
		}
	}
	if counter < 1 {
		counter = 1
	}

	s.tickets = tickets
	s.counter = counter

	s.logger.InfoContext(ctx, "ticket store loaded",
		"tickets", len(tickets),
		"next_id", counter,
	)
	return nil
}

// loadKey reads and decodes key. Absent keys yield absent; so do malformed
// values when the store resets on corruption.
func loadKey[T any](ctx context.Context, s *TicketStore, key string, absent T, decode func([]byte) (T, error)) (T, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrKeyNotFound) {
			return absent, nil
		}
		return absent, fmt.Errorf("read %q: %w", key, err)
	}

	v, err := decode(raw)
	if err != nil {
		if s.resetOnCorrupt {
			s.logger.WarnContext(ctx, "discarding malformed persisted value",
				"key", key,
				"error", err,
			)
			return absent, nil
		}
		return absent, fmt.Errorf("decode %q: %w: %v", key, apperrors.ErrCorruptStorage, err)
	}
	return v, nil
}

func decodeTickets(raw []byte) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		// a persisted JSON null
		return []domain.Ticket{}, nil
	}

	seen := make(map[int64]struct{}, len(tickets))
	for i, t := range tickets {
		if t.ID <= 0 {
			return nil, fmt.Errorf("ticket at index %d has id %d", i, t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate ticket id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
		if !t.Status.IsValid() {
			return nil, fmt.Errorf("ticket %d has status %q", t.ID, t.Status)
		}
		if !t.Priority.IsValid() {
			return nil, fmt.Errorf("ticket %d has priority %q", t.ID, t.Priority)
		}
	}
	return tickets, nil
}

func decodeCounter(raw []byte) (int64, error) {
	var counter int64
	if err := json.Unmarshal(raw, &counter); err != nil {
		return 0, err
	}
	return counter, nil
}

// Create validates and appends a new ticket, then persists.
func (s *TicketStore) Create(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error) {
	params = params.Normalize()

	v := apperrors.NewValidationErrors()
	if params.Name == "" {
		v.AddCause("name", apperrors.ErrNameRequired)
	}
	if params.Issue == "" {
		v.AddCause("issue", apperrors.ErrIssueRequired)
	}
	if v.HasErrors() {
		return nil, v
	}

	s.mu.Lock()
	ticket := domain.NewTicket(s.counter, params, s.now(), s.timeLayout)
	s.tickets = append(s.tickets, ticket)
	s.counter++

	if err := s.persistLocked(ctx); err != nil {
		s.tickets = s.tickets[:len(s.tickets)-1]
		s.counter--
		s.mu.Unlock()
		return nil, err
	}
	counts := domain.CountTickets(s.tickets)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "ticket created", "ticket_id", ticket.ID)
	s.publish(domain.EventTicketCreated, ticket, counts)

	return &ticket, nil
}

// Update overwrites a ticket's status and priority, then persists.
func (s *TicketStore) Update(ctx context.Context, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	v := apperrors.NewValidationErrors()
	if !params.Status.IsValid() {
		v.AddCause("status", apperrors.ErrInvalidStatus)
	}
	if !params.Priority.IsValid() {
		v.AddCause("priority", apperrors.ErrInvalidPriority)
	}
	if v.HasErrors() {
		return nil, v
	}

	s.mu.Lock()
	idx := s.indexOf(params.TicketID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, apperrors.ErrTicketNotFound
	}

	previous := s.tickets[idx]
	s.tickets[idx].Triage(params.Status, params.Priority)

	if err := s.persistLocked(ctx); err != nil {
		s.tickets[idx] = previous
		s.mu.Unlock()
		return nil, err
	}
	ticket := s.tickets[idx]
	counts := domain.CountTickets(s.tickets)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "ticket updated",
		"ticket_id", ticket.ID,
		"status", ticket.Status,
		"priority", ticket.Priority,
	)
	s.publish(domain.EventTicketUpdated, ticket, counts)

	return &ticket, nil
}

// Persist writes the full list and the counter to the backend.
func (s *TicketStore) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *TicketStore) persistLocked(ctx context.Context) error {
	list, err := json.Marshal(s.tickets)
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}

	err = s.kv.SetMany(ctx,
		ports.Entry{Key: ports.TicketsKey, Value: list},
		ports.Entry{Key: ports.TicketCounterKey, Value: []byte(strconv.FormatInt(s.counter, 10))},
	)
	if err != nil {
		return fmt.Errorf("persist tickets: %w", err)
	}
	return nil
}

// Get returns a copy of the ticket with the given id.
func (s *TicketStore) Get(id int64) (domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Ticket{}, apperrors.ErrTicketNotFound
	}
	return s.tickets[idx], nil
}

// All returns a snapshot of every ticket in insertion order.
func (s *TicketStore) All() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// Counter returns the id the next ticket will receive.
func (s *TicketStore) Counter() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter
}

func (s *TicketStore) indexOf(id int64) int {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TicketStore) publish(eventType domain.EventType, ticket domain.Ticket, counts domain.TicketCounts) {
	if s.broadcaster == nil {
		return
	}
	_ = s.broadcaster.Broadcast(domain.Event{
		Type:     eventType,
		Ticket:   ticket,
		Counts:   counts,
		TicketID: ticket.ID,
	})
}
