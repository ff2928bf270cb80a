package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used across the session view.
type Styles struct {
	Header    lipgloss.Style
	Status    lipgloss.Style
	Muted     lipgloss.Style
	AgentName lipgloss.Style
	Human     lipgloss.Style
	Prompt    lipgloss.Style
	Error     lipgloss.Style
	Done      lipgloss.Style
	Spinner   lipgloss.Style
}

// DefaultStyles returns the standard color scheme.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")),

		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		AgentName: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),

		Human: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),

		Prompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		Done: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		Spinner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")),
	}
}
