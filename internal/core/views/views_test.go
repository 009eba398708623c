package views_test

import (
	"testing"

	"github.com/lorrc/it-support-portal/internal/core/domain"
	"github.com/lorrc/it-support-portal/internal/core/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTickets() []domain.Ticket {
	return []domain.Ticket{
		{ID: 1, Name: "Alice", Issue: "Printer jam", Status: domain.StatusClosed, Priority: domain.PriorityLow},
		{ID: 2, Name: "Bob", Issue: "VPN down", Status: domain.StatusOpen, Priority: domain.PriorityMedium},
		{ID: 5, Name: "Carol", Issue: "Slow laptop", Status: domain.StatusInProgress, Priority: domain.PriorityHigh},
	}
}

func TestBadges(t *testing.T) {
	tests := []struct {
		name  string
		badge views.Badge
		want  views.Badge
	}{
		{"open", views.StatusBadge(domain.StatusOpen), views.Badge{Label: "Open", Class: "status-open"}},
		{"in progress", views.StatusBadge(domain.StatusInProgress), views.Badge{Label: "In Progress", Class: "status-in-progress"}},
		{"closed", views.StatusBadge(domain.StatusClosed), views.Badge{Label: "Closed", Class: "status-closed"}},
		{"low", views.PriorityBadge(domain.PriorityLow), views.Badge{Label: "Low", Class: "priority-low"}},
		{"medium", views.PriorityBadge(domain.PriorityMedium), views.Badge{Label: "Medium", Class: "priority-medium"}},
		{"high", views.PriorityBadge(domain.PriorityHigh), views.Badge{Label: "High", Class: "priority-high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.badge)
		})
	}
}

func TestBuildMyTickets(t *testing.T) {
	t.Run("empty list renders one placeholder row", func(t *testing.T) {
		view := views.BuildMyTickets(nil)

		assert.Empty(t, view.Rows)
		require.NotNil(t, view.Placeholder)
		assert.Equal(t, views.Placeholder{Text: "No tickets found", ColSpan: 4}, *view.Placeholder)
		assert.Equal(t, 1, view.RowCount())
		assert.Zero(t, view.OpenCount)
		assert.Zero(t, view.ClosedCount)
	})

	t.Run("open and closed tallies", func(t *testing.T) {
		tickets := append(sampleTickets(), domain.Ticket{ID: 6, Issue: "No sound", Status: domain.StatusOpen, Priority: domain.PriorityLow})

		view := views.BuildMyTickets(tickets)

		assert.Equal(t, 2, view.OpenCount)
		assert.Equal(t, 1, view.ClosedCount)
		// tallies never reorder rows
		assert.Equal(t, int64(1), view.Rows[0].ID)
	})

	t.Run("one row per ticket in store order", func(t *testing.T) {
		view := views.BuildMyTickets(sampleTickets())

		assert.Nil(t, view.Placeholder)
		require.Len(t, view.Rows, 3)
		assert.Equal(t, 3, view.RowCount())
		assert.Equal(t, []int64{1, 2, 5}, []int64{view.Rows[0].ID, view.Rows[1].ID, view.Rows[2].ID})
		assert.Equal(t, views.MyTicketRow{
			ID:       5,
			Issue:    "Slow laptop",
			Status:   views.Badge{Label: "In Progress", Class: "status-in-progress"},
			Priority: views.Badge{Label: "High", Class: "priority-high"},
		}, view.Rows[2])
	})

	t.Run("idempotent", func(t *testing.T) {
		tickets := sampleTickets()
		assert.Equal(t, views.BuildMyTickets(tickets), views.BuildMyTickets(tickets))
	})
}

func TestBuildDashboard(t *testing.T) {
	t.Run("empty list renders one placeholder row", func(t *testing.T) {
		view := views.BuildDashboard([]domain.Ticket{})

		assert.Empty(t, view.Rows)
		require.NotNil(t, view.Placeholder)
		assert.Equal(t, 6, view.Placeholder.ColSpan)
		assert.Equal(t, 1, view.RowCount())
		assert.Zero(t, view.OpenCount)
	})

	t.Run("rows carry pre-selected selectors and save action", func(t *testing.T) {
		view := views.BuildDashboard(sampleTickets())

		require.Len(t, view.Rows, 3)
		row := view.Rows[0]
		assert.Equal(t, int64(1), row.ID)
		assert.Equal(t, "Alice", row.Name)
		assert.Equal(t, "Printer jam", row.Issue)
		assert.Equal(t, "status-1", row.Status.ID)
		assert.Equal(t, "Closed", row.Status.Selected())
		assert.Equal(t, "priority-1", row.Priority.ID)
		assert.Equal(t, "Low", row.Priority.Selected())
		assert.Equal(t, "/it-dashboard/tickets/1", row.SaveAction)
		assert.Len(t, row.Status.Options, 3)
		assert.Len(t, row.Priority.Options, 3)

		assert.Equal(t, "/it-dashboard/tickets/5", view.Rows[2].SaveAction)
	})

	t.Run("counts by status", func(t *testing.T) {
		view := views.BuildDashboard(sampleTickets())

		assert.Equal(t, 1, view.OpenCount)
		assert.Equal(t, 1, view.InProgressCount)
		assert.Equal(t, 1, view.ClosedCount)
	})

	t.Run("open count follows updates", func(t *testing.T) {
		tickets := sampleTickets()
		for i := range tickets {
			tickets[i].Triage(domain.StatusOpen, tickets[i].Priority)
		}
		assert.Equal(t, 3, views.BuildDashboard(tickets).OpenCount)

		tickets[1].Triage(domain.StatusClosed, domain.PriorityLow)
		assert.Equal(t, 2, views.BuildDashboard(tickets).OpenCount)
	})
}
