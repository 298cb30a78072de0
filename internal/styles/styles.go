package styles

import "github.com/charmbracelet/lipgloss"

var (
	HEADER   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")).Render
	SECTION  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Render
	BODY     = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Render
	MUTED    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render
	SUCCESS  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render
	WARNING  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render
	ERROR    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render
	PROGRESS = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render
)
