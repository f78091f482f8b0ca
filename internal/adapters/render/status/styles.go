package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	token     lipgloss.Style
	detail    lipgloss.Style
	warning   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	preview   lipgloss.Style
	modeLabel lipgloss.Style
	stopped   lipgloss.Style
	counter   lipgloss.Style
	success   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		token:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		preview:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		modeLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		stopped:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244")),
		counter:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		success:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
	}
}
