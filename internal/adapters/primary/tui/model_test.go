package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/it-support-portal/internal/adapters/secondary/memory"
	"github.com/lorrc/it-support-portal/internal/core/domain"
	"github.com/lorrc/it-support-portal/internal/core/pages"
	"github.com/lorrc/it-support-portal/internal/core/services"
)

func newTestModel(t *testing.T) (Model, *services.TicketStore) {
	t.Helper()

	clock := func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	store := services.NewTicketStore(memory.NewKVStore(), services.WithClock(clock))
	require.NoError(t, store.Load(context.Background()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(context.Background(), store, logger), store
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestModel_StartsOnLogTicket(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, pages.LogTicket, m.Page())
	view := m.View()
	assert.Contains(t, view, "Log a Ticket")
	for _, tab := range []string{"1 Log Ticket", "2 My Tickets", "3 IT Dashboard"} {
		assert.Contains(t, view, tab)
	}
}

func TestModel_SwitchPages(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want string
	}{
		{"1 shows log ticket", runes("1"), pages.LogTicket},
		{"2 shows my tickets", runes("2"), pages.MyTickets},
		{"3 shows dashboard", runes("3"), pages.ITDashboard},
		{"f3 shows dashboard", tea.KeyMsg{Type: tea.KeyF3}, pages.ITDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			m = press(t, m, tt.key)
			assert.Equal(t, tt.want, m.Page())
		})
	}
}

func TestModel_EmptyTablesShowPlaceholder(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, runes("2"))
	assert.Contains(t, m.View(), "No tickets found")
	assert.Contains(t, m.View(), "Open: 0  Closed: 0")

	m = press(t, m, runes("3"))
	view := m.View()
	assert.Contains(t, view, "No tickets found")
	assert.Contains(t, view, "Open Tickets: 0")
}

func TestModel_SubmitTicket(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, enter, runes("Alice"), tab, runes("Printer jam"), enter)

	assert.Equal(t, pages.MyTickets, m.Page())
	assert.Equal(t, "Ticket submitted successfully!", m.notice)
	assert.Empty(t, m.alert)
	assert.Empty(t, m.name.Value())
	assert.Empty(t, m.issue.Value())

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Alice", all[0].Name)
	assert.Equal(t, "Printer jam", all[0].Issue)
	assert.Equal(t, domain.StatusOpen, all[0].Status)

	view := m.View()
	assert.Contains(t, view, "Printer jam")
	assert.Contains(t, view, "Ticket submitted successfully!")
}

func TestModel_SubmitRejectsBlankFields(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, enter, runes("   "), enter, enter)

	assert.Equal(t, pages.LogTicket, m.Page())
	assert.NotEmpty(t, m.alert)
	assert.Empty(t, m.notice)
	assert.Empty(t, store.All())
}

func TestModel_DigitsAreTypedWhileFocused(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, enter, runes("2"))
	assert.Equal(t, pages.LogTicket, m.Page())
	assert.Equal(t, "2", m.name.Value())

	m = press(t, m, esc, runes("2"))
	assert.Equal(t, pages.MyTickets, m.Page())
}

func TestModel_DashboardUpdate(t *testing.T) {
	m, store := newTestModel(t)
	ctx := context.Background()

	_, err := store.Create(ctx, domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.TicketParams{Name: "Bob", Issue: "VPN down"})
	require.NoError(t, err)

	// select Bob, Open -> In Progress, Medium -> High
	m = press(t, m, runes("3"), runes("j"), runes("s"), runes("p"))
	require.Contains(t, m.pending, int64(2))
	assert.Contains(t, m.View(), "*")

	// nothing saved yet
	bob, err := store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, bob.Status)

	m = press(t, m, enter)

	assert.Equal(t, "Ticket updated successfully!", m.notice)
	assert.Empty(t, m.pending)

	bob, err = store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, bob.Status)
	assert.Equal(t, domain.PriorityHigh, bob.Priority)

	alice, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, alice.Status)

	assert.Contains(t, m.View(), "In Progress: 1")
}

func TestModel_CursorStaysInRange(t *testing.T) {
	m, store := newTestModel(t)

	_, err := store.Create(context.Background(), domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
	require.NoError(t, err)

	m = press(t, m, runes("3"), runes("k"), runes("j"), runes("j"))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_Reload(t *testing.T) {
	m, store := newTestModel(t)

	m = press(t, m, runes("3"))
	_, err := store.Create(context.Background(), domain.TicketParams{Name: "Alice", Issue: "Printer jam"})
	require.NoError(t, err)

	m = press(t, m, runes("r"))

	assert.Equal(t, pages.ITDashboard, m.Page())
	assert.Contains(t, m.View(), "Printer jam")
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// q is text while typing
	m = press(t, m, enter, runes("q"))
	assert.Equal(t, "q", m.name.Value())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNextStatusCycles(t *testing.T) {
	assert.Equal(t, domain.StatusInProgress, nextStatus(domain.StatusOpen))
	assert.Equal(t, domain.StatusClosed, nextStatus(domain.StatusInProgress))
	assert.Equal(t, domain.StatusOpen, nextStatus(domain.StatusClosed))
	assert.Equal(t, domain.PriorityHigh, nextPriority(domain.PriorityMedium))
	assert.Equal(t, domain.PriorityLow, nextPriority(domain.PriorityHigh))
}
