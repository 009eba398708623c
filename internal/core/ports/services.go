package ports

import (
	"context"

	"github.com/lorrc/it-support-portal/internal/core/domain"
)

// Storage keys mirrored by the ticket store.
const (
	TicketsKey       = "tickets"
	TicketCounterKey = "ticketIdCounter"
)

// Entry is a single key/value pair written by KeyValueStore.SetMany.
type Entry struct {
	Key   string
	Value []byte
}

// KeyValueStore defines the port for the durable mirror of the ticket list.
// Get returns apperrors.ErrKeyNotFound when the key has never been written.
// SetMany writes every entry, atomically where the backend supports it.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, entries ...Entry) error
	Ping(ctx context.Context) error
	Close() error
}

// UpdateTicketParams defines the input for triaging a ticket.
type UpdateTicketParams struct {
	TicketID int64
	Status   domain.TicketStatus
	Priority domain.TicketPriority
}

// TicketStore defines the operations on the canonical ticket list.
type TicketStore interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, params domain.TicketParams) (*domain.Ticket, error)
	Update(ctx context.Context, params UpdateTicketParams) (*domain.Ticket, error)
	Persist(ctx context.Context) error
	Get(id int64) (domain.Ticket, error)
	All() []domain.Ticket
	Counter() int64
}

// EventBroadcaster defines the port for pushing store changes to live clients.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
