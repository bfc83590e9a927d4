package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Pane is a fixed-height scrolling region with a scrollbar in its last
// column. Lines may carry ANSI styling.
type Pane struct {
	viewport viewport.Model
	lines    []string
	width    int // total width including scrollbar
	height   int
}

// NewPane creates a pane. The width includes 1 column for the scrollbar.
func NewPane(width, height int) Pane {
	vp := viewport.New(max(width-1, 0), height)
	vp.SetContent("")
	return Pane{viewport: vp, width: width, height: height}
}

// SetSize updates the pane dimensions, keeping the scroll offset in range.
func (p *Pane) SetSize(width, height int) {
	if p.width == width && p.height == height {
		return
	}
	p.width = width
	p.height = height
	p.viewport.Width = max(width-1, 0)
	p.viewport.Height = height
	p.viewport.SetContent(strings.Join(p.lines, "\n"))
	p.viewport.SetYOffset(p.viewport.YOffset)
}

// SetLines replaces the content and keeps the current offset when possible.
func (p *Pane) SetLines(lines []string) {
	p.lines = make([]string, len(lines))
	copy(p.lines, lines)
	p.viewport.SetContent(strings.Join(p.lines, "\n"))
	p.viewport.SetYOffset(p.viewport.YOffset)
}

// GotoTop scrolls to the first line.
func (p *Pane) GotoTop() {
	p.viewport.GotoTop()
}

// EnsureVisible scrolls the minimum amount so lines first..last are on
// screen. When the range is taller than the pane, first wins.
func (p *Pane) EnsureVisible(first, last int) {
	if first < 0 || first >= len(p.lines) {
		return
	}
	if last < first {
		last = first
	}
	top := p.viewport.YOffset
	bottom := top + p.height - 1

	switch {
	case first < top:
		p.viewport.SetYOffset(first)
	case last > bottom:
		p.viewport.SetYOffset(min(first, last-p.height+1))
	}
}

// YOffset returns the index of the first visible line.
func (p Pane) YOffset() int {
	return p.viewport.YOffset
}

// ContentWidth returns the width available for content.
func (p Pane) ContentWidth() int {
	return max(p.width-1, 0)
}

// View renders the visible lines with the scrollbar on the right.
func (p Pane) View() string {
	contentLines := strings.Split(p.viewport.View(), "\n")
	scrollbarLines := strings.Split(RenderScrollbar(p.height, len(p.lines), p.viewport.YOffset), "\n")
	contentWidth := p.ContentWidth()

	var b strings.Builder
	for i := 0; i < p.height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		cl := ""
		if i < len(contentLines) {
			cl = contentLines[i]
		}
		b.WriteString(cl)
		if pad := contentWidth - lipgloss.Width(cl); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(scrollbarLines) {
			b.WriteString(scrollbarLines[i])
		}
	}
	return b.String()
}
