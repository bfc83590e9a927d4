package components

import (
	"fmt"
	"strings"
)

const (
	filledChar = "■"
	emptyChar  = "□"
)

// Progress renders a completion bar like: ■■■■□□□□ 50% Complete
type Progress struct {
	Percent int
	Width   int // character width of the bar portion
}

// NewProgress creates a new Progress instance.
func NewProgress(percent, width int) Progress {
	return Progress{
		Percent: percent,
		Width:   width,
	}
}

// View returns the rendered progress bar string.
func (p Progress) View() string {
	if p.Width <= 0 {
		return ""
	}

	percent := p.Percent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := (percent * p.Width) / 100
	bar := strings.Repeat(filledChar, filled) + strings.Repeat(emptyChar, p.Width-filled)

	return fmt.Sprintf("%s %d%% Complete", bar, percent)
}
