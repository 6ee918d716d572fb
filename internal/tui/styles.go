package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Accent   lipgloss.Style
	Page     lipgloss.Style
	Current  lipgloss.Style
	Ellipsis lipgloss.Style
	Panel    lipgloss.Style
	Cursor   lipgloss.Style
	Chip     lipgloss.Style
}

func defaultStyles() styles {
	accent := lipgloss.Color("#7D56F4")
	muted := lipgloss.Color("#6C7086")

	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1),
		Muted:  lipgloss.NewStyle().Foreground(muted),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
		Accent: lipgloss.NewStyle().Foreground(accent),
		Page:   lipgloss.NewStyle().Padding(0, 1),
		Current: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent),
		Ellipsis: lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		Cursor: lipgloss.NewStyle().Foreground(accent).Bold(true),
		Chip: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(lipgloss.Color("#A6E3A1")).
			Padding(0, 1),
	}
}
