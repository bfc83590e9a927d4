package components

import "strings"

const (
	scrollTrack = "│"
	scrollThumb = "█"
)

// RenderScrollbar renders a one-column scrollbar for a region viewHeight
// lines tall showing contentHeight lines from yOffset. Content that fits
// renders as a blank gutter so the layout width does not change.
func RenderScrollbar(viewHeight, contentHeight, yOffset int) string {
	if viewHeight <= 0 {
		return ""
	}
	if contentHeight <= viewHeight {
		return strings.TrimSuffix(strings.Repeat(" \n", viewHeight), "\n")
	}

	thumbSize := max(viewHeight*viewHeight/contentHeight, 1)
	thumbMaxTop := viewHeight - thumbSize
	thumbTop := yOffset * thumbMaxTop / (contentHeight - viewHeight)
	thumbTop = min(max(thumbTop, 0), thumbMaxTop)

	rows := make([]string, viewHeight)
	for i := range rows {
		if i >= thumbTop && i < thumbTop+thumbSize {
			rows[i] = scrollThumb
		} else {
			rows[i] = scrollTrack
		}
	}
	return strings.Join(rows, "\n")
}
