// Package ui provides the interactive browse view over stored analyses.
package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors shared by the browse view.
var (
	colorAccent  = lipgloss.Color("205")
	colorMuted   = lipgloss.Color("241")
	colorSuccess = lipgloss.Color("#8BC34A")
	colorError   = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
)

// Styles holds the lipgloss styles for the browse view.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Content lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	FocusedBorder lipgloss.Color
	BlurredBorder lipgloss.Color
}

// DefaultStyles returns the browse view styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Content: lipgloss.NewStyle(),

		Success: lipgloss.NewStyle().Foreground(colorSuccess),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),

		FocusedBorder: colorSuccess,
		BlurredBorder: colorMuted,
	}
}

// StatusStyle picks the style for a verdict string.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	switch status {
	case "approve":
		return s.Success
	case "disapprove":
		return s.Error
	case "refer_to_mentor":
		return s.Warning
	default:
		return s.Muted
	}
}
