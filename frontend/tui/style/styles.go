// Package style holds the lipgloss style table the generic window
// renderer draws with. Adapted from the teacher's ui/style/styles.go:
// MUD-specific fields (scrollback padding, pane headers, status-connected
// indicators) are replaced by generic window-chrome fields since concrete
// per-widget-kind rendering is out of scope (spec §1 Non-goals).
package style

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles the generic per-window renderer uses.
type Styles struct {
	Title         lipgloss.Style
	Border        lipgloss.Style
	FocusedBorder lipgloss.Style
	SystemMessage lipgloss.Style
	Link          lipgloss.Style
	Muted         lipgloss.Style
	Error         lipgloss.Style
	Warning       lipgloss.Style
}

// Default returns the built-in style set.
func Default() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		FocusedBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		SystemMessage: lipgloss.NewStyle().
			Foreground(lipgloss.Color("179")),
		Link: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Underline(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
	}
}
