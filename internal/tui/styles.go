package tui

import "github.com/charmbracelet/lipgloss"

var (
	muted  = lipgloss.Color("246")
	accent = lipgloss.Color("63")
	mint   = lipgloss.Color("#05ffa1")
	pink   = lipgloss.Color("205")

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle     = lipgloss.NewStyle().Foreground(muted)
	listeningStyle = lipgloss.NewStyle().Bold(true).Foreground(pink)
	speakingStyle  = lipgloss.NewStyle().Bold(true).Foreground(mint)
	idleStyle      = lipgloss.NewStyle().Bold(true)
	partialStyle   = lipgloss.NewStyle().Italic(true).Foreground(muted)
	levelStyle     = lipgloss.NewStyle().Foreground(mint)
	helpStyle      = lipgloss.NewStyle().Foreground(muted)

	roleStyles = map[string]lipgloss.Style{
		"user":      lipgloss.NewStyle().Foreground(mint).Bold(true),
		"assistant": lipgloss.NewStyle().Foreground(accent).Bold(true),
	}

	inputPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)
