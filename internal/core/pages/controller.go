// Package pages decides which page section is visible and refreshes the
// render model of the page being shown.
package pages

import (
	"context"
	"log/slog"

	"github.com/lorrc/it-support-portal/internal/core/domain"
	"github.com/lorrc/it-support-portal/internal/core/views"
)

// Page names.
const (
	LogTicket   = "log-ticket"
	MyTickets   = "my-tickets"
	ITDashboard = "it-dashboard"
)

// DefaultPage is shown on start.
const DefaultPage = LogTicket

var titles = map[string]string{
	LogTicket:   "Log Ticket",
	MyTickets:   "My Tickets",
	ITDashboard: "IT Dashboard",
}

// Title is the navigation label of a page, or the name itself when it has none.
func Title(name string) string {
	if t, ok := titles[name]; ok {
		return t
	}
	return name
}

// TicketLister is the read side of the ticket store.
type TicketLister interface {
	All() []domain.Ticket
}

// Screen is the result of showing a page: which sections are visible and
// the freshly built model of the visible one.
type Screen struct {
	Active    string
	Sections  map[string]bool
	MyTickets *views.MyTicketsView
	Dashboard *views.DashboardView
}

// Visible reports whether the named section is shown.
func (s Screen) Visible(name string) bool {
	return s.Sections[name]
}

// Found reports whether any section is visible.
func (s Screen) Found() bool {
	return s.Active != ""
}

// Controller shows one registered section at a time.
type Controller struct {
	store    TicketLister
	sections []string
	logger   *slog.Logger
}

// NewController registers the three portal sections.
func NewController(store TicketLister, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		store:  store,
		logger: logger.With("component", "page_controller"),
	}
	for _, name := range []string{LogTicket, MyTickets, ITDashboard} {
		c.register(name)
	}
	return c
}

func (c *Controller) register(name string) {
	for _, s := range c.sections {
		if s == name {
			return
		}
	}
	c.sections = append(c.sections, name)
}

// Sections returns the section names in navigation order.
func (c *Controller) Sections() []string {
	return append([]string(nil), c.sections...)
}

// Show hides every section and reveals the one called name. Pages with a
// table are rebuilt from the store first. Unknown names leave nothing visible.
func (c *Controller) Show(ctx context.Context, name string) Screen {
	screen := Screen{Sections: make(map[string]bool, len(c.sections))}
	for _, s := range c.sections {
		screen.Sections[s] = false
	}

	if _, ok := screen.Sections[name]; !ok {
		c.logger.DebugContext(ctx, "unknown page requested", "page", name)
		return screen
	}

	switch name {
	case MyTickets:
		view := views.BuildMyTickets(c.store.All())
		screen.MyTickets = &view
	case ITDashboard:
		view := views.BuildDashboard(c.store.All())
		screen.Dashboard = &view
	}

	screen.Active = name
	screen.Sections[name] = true
	return screen
}

// Default shows the start page.
func (c *Controller) Default(ctx context.Context) Screen {
	return c.Show(ctx, DefaultPage)
}
