package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header    lipgloss.Style
	title     lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	userLabel lipgloss.Style
	botLabel  lipgloss.Style
	userText  lipgloss.Style
	botText   lipgloss.Style
	input     lipgloss.Style
	help      lipgloss.Style
}

func defaultStyles() styles {
	blue := lipgloss.Color("#2563EB")
	gray := lipgloss.Color("#6B7280")

	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(blue).Padding(0, 1),
		title:     lipgloss.NewStyle().Foreground(lipgloss.Color("#DBEAFE")).Background(blue).Padding(0, 1),
		heading:   lipgloss.NewStyle().Bold(true).MarginTop(1),
		muted:     lipgloss.NewStyle().Foreground(gray),
		userLabel: lipgloss.NewStyle().Bold(true).Foreground(blue),
		botLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E")),
		userText:  lipgloss.NewStyle().PaddingLeft(2),
		botText:   lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#1F2937")),
		input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(blue).Padding(0, 1),
		help:      lipgloss.NewStyle().Foreground(gray).Italic(true),
	}
}
