// Package styles defines shared lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/smartplan/internal/plan"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#5FAFAF") // Teal accent
	secondaryColor = lipgloss.Color("#666666") // Gray for secondary text
	successColor   = lipgloss.Color("#87AF87") // Muted sage for success
	errorColor     = lipgloss.Color("#AF5F5F") // Muted terracotta for errors
	warningColor   = lipgloss.Color("#D7AF5F") // Amber

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// HeadingStyle for panel headings
	HeadingStyle = lipgloss.NewStyle().
			Bold(true)

	// SubtleStyle for hints/help text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// SelectedStyle for selected items in lists
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// StatusBarStyle for bottom status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// BoxStyle for panel borders
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	// FocusedBoxStyle marks the panel that receives keys
	FocusedBoxStyle = BoxStyle.
			BorderForeground(primaryColor)

	// ModalStyle for notices and confirmations
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 3)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// WarningStyle for in-flight states
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)
)

// Priority returns the badge style for a priority, matched case-insensitively.
func Priority(p plan.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch {
	case p.Is(plan.PriorityHigh):
		return base.Foreground(lipgloss.Color("#FFFFFF")).Background(errorColor)
	case p.Is(plan.PriorityMedium):
		return base.Foreground(lipgloss.Color("#000000")).Background(warningColor)
	case p.Is(plan.PriorityLow):
		return base.Foreground(lipgloss.Color("#000000")).Background(successColor)
	default:
		return base.Foreground(secondaryColor)
	}
}

// Status returns the text style for a task status.
func Status(s plan.Status) lipgloss.Style {
	switch s {
	case plan.StatusCompleted:
		return SuccessStyle
	case plan.StatusInProgress:
		return WarningStyle
	default:
		return SubtleStyle
	}
}
