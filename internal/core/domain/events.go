package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventTicketCreated EventType = "TICKET_CREATED"
	EventTicketUpdated EventType = "TICKET_UPDATED"
)

// TicketCounts summarises the list by status.
type TicketCounts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// CountTickets tallies tickets by status.
func CountTickets(tickets []Ticket) TicketCounts {
	counts := TicketCounts{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case StatusOpen:
			counts.Open++
		case StatusInProgress:
			counts.InProgress++
		case StatusClosed:
			counts.Closed++
		}
	}
	return counts
}

// Event is the payload sent over WebSocket.
type Event struct {
	Type     EventType    `json:"type"`
	Ticket   Ticket       `json:"ticket"`
	Counts   TicketCounts `json:"counts"`
	TicketID int64        `json:"ticketId"`
}
