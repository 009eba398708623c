// Package tui is a terminal front end for the portal: the same three pages
// as the web UI, driven from the keyboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lorrc/it-support-portal/internal/core/domain"
	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/pages"
	"github.com/lorrc/it-support-portal/internal/core/ports"
	"github.com/lorrc/it-support-portal/internal/core/views"
)

const (
	focusNone = iota
	focusName
	focusIssue
)

// edit is a dashboard row change that has not been saved yet.
type edit struct {
	status   domain.TicketStatus
	priority domain.TicketPriority
}

// Model is the bubbletea model of the portal.
type Model struct {
	ctx        context.Context
	store      ports.TicketStore
	controller *pages.Controller
	logger     *slog.Logger

	screen pages.Screen

	name  textinput.Model
	issue textinput.Model
	focus int

	cursor  int
	pending map[int64]edit

	notice string
	alert  string
}

// New builds a model showing the start page.
func New(ctx context.Context, store ports.TicketStore, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	name := textinput.New()
	name.Prompt = "Your name: "
	name.Placeholder = "Jane Doe"
	name.CharLimit = 120

	issue := textinput.New()
	issue.Prompt = "Issue:     "
	issue.Placeholder = "Describe the issue"
	issue.CharLimit = 2000

	m := Model{
		ctx:        ctx,
		store:      store,
		controller: pages.NewController(store, logger),
		logger:     logger.With("component", "tui"),
		name:       name,
		issue:      issue,
		pending:    make(map[int64]edit),
	}
	m.show(pages.DefaultPage)
	return m
}

// Run starts the program on the alternate screen.
func Run(ctx context.Context, store ports.TicketStore, logger *slog.Logger) error {
	p := tea.NewProgram(New(ctx, store, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Page returns the name of the visible page.
func (m Model) Page() string {
	return m.screen.Active
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.focus != focusNone {
		return m.updateForm(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, keys.LogTicket):
		m.clearMessages()
		m.show(pages.LogTicket)
		return m, nil
	case key.Matches(keyMsg, keys.MyTickets):
		m.clearMessages()
		m.show(pages.MyTickets)
		return m, nil
	case key.Matches(keyMsg, keys.Dashboard):
		m.clearMessages()
		m.show(pages.ITDashboard)
		return m, nil
	case key.Matches(keyMsg, keys.Reload):
		m.reload()
		return m, nil
	}

	switch m.screen.Active {
	case pages.LogTicket:
		if key.Matches(keyMsg, keys.NextField, keys.Submit) {
			m.setFocus(focusName)
		}
	case pages.ITDashboard:
		m.updateDashboard(keyMsg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Blur):
		m.setFocus(focusNone)
		return m, nil
	case key.Matches(msg, keys.NextField):
		if m.focus == focusName {
			m.setFocus(focusIssue)
		} else {
			m.setFocus(focusName)
		}
		return m, nil
	case key.Matches(msg, keys.Submit):
		if m.focus == focusName {
			m.setFocus(focusIssue)
			return m, nil
		}
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.issue, cmd = m.issue.Update(msg)
	}
	return m, cmd
}

func (m *Model) submit() {
	m.clearMessages()

	_, err := m.store.Create(m.ctx, domain.TicketParams{
		Name:  m.name.Value(),
		Issue: m.issue.Value(),
	})
	if err != nil {
		m.alert = describe(err)
		return
	}

	m.name.Reset()
	m.issue.Reset()
	m.setFocus(focusNone)
	m.show(pages.MyTickets)
	m.notice = "Ticket submitted successfully!"
}

func (m *Model) updateDashboard(msg tea.KeyMsg) {
	view := m.screen.Dashboard
	if view == nil || len(view.Rows) == 0 {
		return
	}
	row := view.Rows[m.cursor]

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(view.Rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Status):
		e := m.editFor(row)
		e.status = nextStatus(e.status)
		m.pending[row.ID] = e
	case key.Matches(msg, keys.Priority):
		e := m.editFor(row)
		e.priority = nextPriority(e.priority)
		m.pending[row.ID] = e
	case key.Matches(msg, keys.Submit):
		m.save(row)
	}
}

func (m *Model) save(row views.DashboardRow) {
	m.clearMessages()
	e := m.editFor(row)

	_, err := m.store.Update(m.ctx, ports.UpdateTicketParams{
		TicketID: row.ID,
		Status:   e.status,
		Priority: e.priority,
	})
	if err != nil {
		m.alert = describe(err)
		return
	}

	delete(m.pending, row.ID)
	m.show(pages.ITDashboard)
	m.notice = "Ticket updated successfully!"
}

// editFor returns the row's pending edit, or its saved values.
func (m *Model) editFor(row views.DashboardRow) edit {
	if e, ok := m.pending[row.ID]; ok {
		return e
	}
	return edit{
		status:   domain.TicketStatus(row.Status.Selected()),
		priority: domain.TicketPriority(row.Priority.Selected()),
	}
}

func (m *Model) reload() {
	m.clearMessages()
	if err := m.store.Load(m.ctx); err != nil {
		m.logger.ErrorContext(m.ctx, "reload failed", "error", err)
		m.alert = describe(err)
		return
	}
	m.pending = make(map[int64]edit)
	m.show(m.screen.Active)
	m.notice = "Reloaded from storage."
}

func (m *Model) show(page string) {
	m.screen = m.controller.Show(m.ctx, page)
	if d := m.screen.Dashboard; d != nil && m.cursor >= len(d.Rows) {
		m.cursor = max(len(d.Rows)-1, 0)
	}
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.name.Blur()
	m.issue.Blur()
	switch f {
	case focusName:
		m.name.Focus()
	case focusIssue:
		m.issue.Focus()
	}
}

func (m *Model) clearMessages() {
	m.notice, m.alert = "", ""
}

func nextStatus(s domain.TicketStatus) domain.TicketStatus {
	for i, v := range domain.Statuses {
		if v == s {
			return domain.Statuses[(i+1)%len(domain.Statuses)]
		}
	}
	return domain.Statuses[0]
}

func nextPriority(p domain.TicketPriority) domain.TicketPriority {
	for i, v := range domain.Priorities {
		if v == p {
			return domain.Priorities[(i+1)%len(domain.Priorities)]
		}
	}
	return domain.Priorities[0]
}

// describe turns a store error into a status line.
func describe(err error) string {
	var verrs *apperrors.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		msgs := make([]string, 0, len(verrs.Errors))
		for _, field := range []string{"name", "issue", "status", "priority"} {
			msgs = append(msgs, verrs.Errors[field]...)
		}
		return strings.Join(msgs, "; ")
	case errors.Is(err, apperrors.ErrTicketNotFound):
		return "Ticket not found."
	case errors.Is(err, apperrors.ErrCorruptStorage):
		return "Stored tickets are malformed."
	default:
		return "Could not save: " + err.Error()
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("IT Support Portal"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("Ticket Management System"))
	b.WriteString("\n\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	switch m.screen.Active {
	case pages.LogTicket:
		b.WriteString(m.logTicketView())
	case pages.MyTickets:
		b.WriteString(myTicketsView(m.screen.MyTickets))
	case pages.ITDashboard:
		b.WriteString(m.dashboardView())
	default:
		b.WriteString("Page not found.")
	}

	if m.notice != "" {
		b.WriteString("\n\n" + successStyle.Render("✔ "+m.notice))
	}
	if m.alert != "" {
		b.WriteString("\n\n" + errorStyle.Render("✖ "+m.alert))
	}

	b.WriteString("\n\n" + helpStyle.Render(m.help()))
	return panelStyle.Render(b.String())
}

func (m Model) tabs() string {
	sections := m.controller.Sections()
	out := make([]string, 0, len(sections))
	for i, page := range sections {
		label := fmt.Sprintf("%d %s", i+1, pages.Title(page))
		if page == m.screen.Active {
			out = append(out, activeTab.Render(label))
		} else {
			out = append(out, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m Model) logTicketView() string {
	return headerStyle.Render("Log a Ticket") + "\n\n" + m.name.View() + "\n" + m.issue.View()
}

func myTicketsView(v *views.MyTicketsView) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Open: %d  Closed: %d\n\n", v.OpenCount, v.ClosedCount)
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-40s %-12s %-8s", "ID", "Issue", "Status", "Priority")))
	b.WriteString("\n")
	if v.Placeholder != nil {
		b.WriteString(v.Placeholder.Text)
		return b.String()
	}
	for _, r := range v.Rows {
		fmt.Fprintf(&b, "%-5d %-40s %s %s\n",
			r.ID,
			truncate(r.Issue, 40),
			pad(badge(r.Status.Class, r.Status.Label), r.Status.Label, 12),
			badge(r.Priority.Class, r.Priority.Label),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) dashboardView() string {
	v := m.screen.Dashboard
	if v == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Open Tickets: %d   In Progress: %d   Closed: %d\n\n", v.OpenCount, v.InProgressCount, v.ClosedCount)
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-5s %-16s %-30s %-12s %-8s", "ID", "Name", "Issue", "Status", "Priority")))
	b.WriteString("\n")
	if v.Placeholder != nil {
		b.WriteString(v.Placeholder.Text)
		return b.String()
	}
	for i, r := range v.Rows {
		e := m.editFor(r)
		line := fmt.Sprintf("%-5d %-16s %-30s %-12s %-8s",
			r.ID, truncate(r.Name, 16), truncate(r.Issue, 30), e.status, e.priority)
		if _, dirty := m.pending[r.ID]; dirty {
			line += pendingStyle.Render(" *")
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) help() string {
	switch {
	case m.focus != focusNone:
		return "tab next field • enter submit • esc stop typing • ctrl+c quit"
	case m.screen.Active == pages.ITDashboard:
		return "↑/↓ select • s status • p priority • enter save • r reload • 1/2/3 pages • q quit"
	default:
		return "1/2/3 pages • enter start typing • r reload • q quit"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// pad right-pads a styled string using the width of its plain label.
func pad(styled, plain string, width int) string {
	if n := lipgloss.Width(plain); n < width {
		return styled + strings.Repeat(" ", width-n)
	}
	return styled
}
