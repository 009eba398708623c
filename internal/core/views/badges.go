package views

import (
	"strings"

	"github.com/lorrc/it-support-portal/internal/core/domain"
)

// Badge is a styled label for a status or priority value.
type Badge struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

// StatusBadge renders a status as "status-open", "status-in-progress", ...
func StatusBadge(status domain.TicketStatus) Badge {
	return Badge{
		Label: string(status),
		Class: "status-" + slug(string(status)),
	}
}

// PriorityBadge renders a priority as "priority-low", "priority-medium", ...
func PriorityBadge(priority domain.TicketPriority) Badge {
	return Badge{
		Label: string(priority),
		Class: "priority-" + slug(string(priority)),
	}
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
