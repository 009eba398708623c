package domain

import (
	"strings"
	"time"
)

// TicketStatus represents the possible states of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Open"
	StatusInProgress TicketStatus = "In Progress"
	StatusClosed     TicketStatus = "Closed"
)

// Statuses lists every status in selector order.
var Statuses = []TicketStatus{StatusOpen, StatusInProgress, StatusClosed}

// IsValid reports whether s is one of the known statuses.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
)

// Priorities lists every priority in selector order.
var Priorities = []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the known priorities.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DefaultTimeLayout renders timestamps the way en-US toLocaleString does.
const DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

// Ticket is the core domain entity. The JSON tags are the persisted format.
type Ticket struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Issue     string         `json:"issue"`
	Status    TicketStatus   `json:"status"`
	Priority  TicketPriority `json:"priority"`
	CreatedAt string         `json:"createdAt"`
}

// TicketParams holds the user-supplied fields of a new ticket.
type TicketParams struct {
	Name  string
	Issue string
}

// Normalize trims surrounding whitespace from every field.
func (p TicketParams) Normalize() TicketParams {
	return TicketParams{
		Name:  strings.TrimSpace(p.Name),
		Issue: strings.TrimSpace(p.Issue),
	}
}

// NewTicket builds a ticket with the default status and priority.
// Params are expected to be normalized and validated by the caller.
func NewTicket(id int64, params TicketParams, createdAt time.Time, layout string) Ticket {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return Ticket{
		ID:        id,
		Name:      params.Name,
		Issue:     params.Issue,
		Status:    StatusOpen,
		Priority:  PriorityMedium,
		CreatedAt: createdAt.Format(layout),
	}
}

// IsOpen reports whether the ticket counts towards the dashboard open count.
func (t Ticket) IsOpen() bool {
	return t.Status == StatusOpen
}

// Triage overwrites status and priority in place. Any value may follow any other.
func (t *Ticket) Triage(status TicketStatus, priority TicketPriority) {
	t.Status = status
	t.Priority = priority
}
