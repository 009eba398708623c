// Package views projects the ticket list into render models for the
// My Tickets and IT Dashboard pages. Every function here is pure.
package views

import (
	"strconv"

	"github.com/lorrc/it-support-portal/internal/core/domain"
)

const (
	// EmptyText is shown in the single placeholder row of an empty table.
	EmptyText = "No tickets found"

	MyTicketsColumns = 4
	DashboardColumns = 6
)

// Placeholder is the row rendered instead of data when there are no tickets.
type Placeholder struct {
	Text    string `json:"text"`
	ColSpan int    `json:"colSpan"`
}

// MyTicketRow is one row of the My Tickets table.
type MyTicketRow struct {
	ID       int64  `json:"id"`
	Issue    string `json:"issue"`
	Status   Badge  `json:"status"`
	Priority Badge  `json:"priority"`
}

// MyTicketsView is the render model for the My Tickets page.
type MyTicketsView struct {
	Rows        []MyTicketRow `json:"rows"`
	OpenCount   int           `json:"openCount"`
	ClosedCount int           `json:"closedCount"`
	Placeholder *Placeholder  `json:"placeholder,omitempty"`
}

// RowCount is the number of table rows, counting the placeholder.
func (v MyTicketsView) RowCount() int {
	if v.Placeholder != nil {
		return 1
	}
	return len(v.Rows)
}

// Option is one entry of a selector.
type Option struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// Selector is an editable dropdown bound to a ticket field.
type Selector struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Selected returns the value of the pre-selected option.
func (s Selector) Selected() string {
	for _, o := range s.Options {
		if o.Selected {
			return o.Value
		}
	}
	return ""
}

// DashboardRow is one row of the IT Dashboard table.
type DashboardRow struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Issue      string   `json:"issue"`
	Status     Selector `json:"status"`
	Priority   Selector `json:"priority"`
	SaveAction string   `json:"saveAction"`
}

// DashboardView is the render model for the IT Dashboard page.
type DashboardView struct {
	Rows            []DashboardRow `json:"rows"`
	OpenCount       int            `json:"openCount"`
	InProgressCount int            `json:"inProgressCount"`
	ClosedCount     int            `json:"closedCount"`
	Placeholder     *Placeholder   `json:"placeholder,omitempty"`
}

// RowCount is the number of table rows, counting the placeholder.
func (v DashboardView) RowCount() int {
	if v.Placeholder != nil {
		return 1
	}
	return len(v.Rows)
}

// SaveAction is the form target that updates the ticket with the given id.
func SaveAction(id int64) string {
	return "/it-dashboard/tickets/" + strconv.FormatInt(id, 10)
}

// BuildMyTickets projects tickets into the My Tickets table, in store order.
func BuildMyTickets(tickets []domain.Ticket) MyTicketsView {
	view := MyTicketsView{Rows: make([]MyTicketRow, 0, len(tickets))}
	for _, t := range tickets {
		view.Rows = append(view.Rows, MyTicketRow{
			ID:       t.ID,
			Issue:    t.Issue,
			Status:   StatusBadge(t.Status),
			Priority: PriorityBadge(t.Priority),
		})
	}
	counts := domain.CountTickets(tickets)
	view.OpenCount = counts.Open
	view.ClosedCount = counts.Closed
	if len(tickets) == 0 {
		view.Placeholder = &Placeholder{Text: EmptyText, ColSpan: MyTicketsColumns}
	}
	return view
}

// BuildDashboard projects tickets into the IT Dashboard table and counts them.
func BuildDashboard(tickets []domain.Ticket) DashboardView {
	counts := domain.CountTickets(tickets)
	view := DashboardView{
		Rows:            make([]DashboardRow, 0, len(tickets)),
		OpenCount:       counts.Open,
		InProgressCount: counts.InProgress,
		ClosedCount:     counts.Closed,
	}
	for _, t := range tickets {
		id := strconv.FormatInt(t.ID, 10)
		view.Rows = append(view.Rows, DashboardRow{
			ID:         t.ID,
			Name:       t.Name,
			Issue:      t.Issue,
			Status:     statusSelector("status-"+id, t.Status),
			Priority:   prioritySelector("priority-"+id, t.Priority),
			SaveAction: SaveAction(t.ID),
		})
	}
	if len(tickets) == 0 {
		view.Placeholder = &Placeholder{Text: EmptyText, ColSpan: DashboardColumns}
	}
	return view
}

func statusSelector(id string, current domain.TicketStatus) Selector {
	options := make([]Option, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		options = append(options, Option{Value: string(s), Selected: s == current})
	}
	return Selector{ID: id, Name: "status", Options: options}
}

func prioritySelector(id string, current domain.TicketPriority) Selector {
	options := make([]Option, 0, len(domain.Priorities))
	for _, p := range domain.Priorities {
		options = append(options, Option{Value: string(p), Selected: p == current})
	}
	return Selector{ID: id, Name: "priority", Options: options}
}
