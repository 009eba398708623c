package services

import (
	"context"
	"fmt"

	"github.com/lorrc/it-support-portal/internal/core/domain"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

type demoTicket struct {
	name     string
	issue    string
	status   domain.TicketStatus
	priority domain.TicketPriority
}

var demoTickets = []demoTicket{
	{"John Doe", "Computer won't start", domain.StatusOpen, domain.PriorityHigh},
	{"Jane Smith", "Email not working", domain.StatusInProgress, domain.PriorityMedium},
	{"Bob Johnson", "Printer offline", domain.StatusClosed, domain.PriorityLow},
}

// SeedDemo fills an empty store with a few sample tickets. It returns the
// number of tickets created, which is zero when the store already has data.
func SeedDemo(ctx context.Context, store ports.TicketStore) (int, error) {
	if len(store.All()) > 0 {
		return 0, nil
	}

	for i, demo := range demoTickets {
		ticket, err := store.Create(ctx, domain.TicketParams{Name: demo.name, Issue: demo.issue})
		if err != nil {
			return i, fmt.Errorf("seed ticket %d: %w", i+1, err)
		}
		if demo.status == ticket.Status && demo.priority == ticket.Priority {
			continue
		}
		_, err = store.Update(ctx, ports.UpdateTicketParams{
			TicketID: ticket.ID,
			Status:   demo.status,
			Priority: demo.priority,
		})
		if err != nil {
			return i, fmt.Errorf("seed ticket %d: %w", i+1, err)
		}
	}
	return len(demoTickets), nil
}
