package cmd

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	accentColor  = lipgloss.Color("#54A0FF") // blue
	successColor = lipgloss.Color("#73F59F") // green
	mutedColor   = lipgloss.Color("#6B7280") // gray
	dangerColor  = lipgloss.Color("#FF8787") // red

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	idStyle = lipgloss.NewStyle().
		Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	progressStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dangerColor)

	stepTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Underline(true)
)
