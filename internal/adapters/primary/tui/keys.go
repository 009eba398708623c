package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	LogTicket key.Binding
	MyTickets key.Binding
	Dashboard key.Binding
	NextField key.Binding
	Blur      key.Binding
	Submit    key.Binding
	Up        key.Binding
	Down      key.Binding
	Status    key.Binding
	Priority  key.Binding
	Reload    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	LogTicket: key.NewBinding(key.WithKeys("1", "f1"), key.WithHelp("1", "log ticket")),
	MyTickets: key.NewBinding(key.WithKeys("2", "f2"), key.WithHelp("2", "my tickets")),
	Dashboard: key.NewBinding(key.WithKeys("3", "f3"), key.WithHelp("3", "dashboard")),
	NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Blur:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop typing")),
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit/save")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Status:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status")),
	Priority:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}
