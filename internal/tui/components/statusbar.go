package components

import (
	"strings"

	"github.com/pablasso/smartplan/internal/tui/styles"
)

// KeyHelp is one entry in the status bar.
type KeyHelp struct {
	Key  string
	Desc string
}

// StatusBar renders a bottom help bar showing contextual help items.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render returns the status bar string for the given width and items.
// Items are joined with " • " separator and padded to fill the width.
func (s StatusBar) Render(width int, items []KeyHelp) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Key + " " + item.Desc
	}
	return styles.StatusBarStyle.Width(width).Render(strings.Join(parts, " • "))
}
