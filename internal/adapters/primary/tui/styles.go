package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtitleStyle = lipgloss.NewStyle().Faint(true)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	// keyed by views.Badge.Class
	badgeStyles = map[string]lipgloss.Style{
		"status-open":        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"status-in-progress": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"status-closed":      lipgloss.NewStyle().Faint(true),
		"priority-low":       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"priority-medium":    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"priority-high":      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

func badge(class, label string) string {
	if s, ok := badgeStyles[class]; ok {
		return s.Render(label)
	}
	return label
}
