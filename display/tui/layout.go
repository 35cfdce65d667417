package tui

import (
	"strings"

	"gitlab.com/tinyland/lab/pulse-view/dashboard"
)

// LayoutSize represents a responsive breakpoint for terminal width.
type LayoutSize int

const (
	// LayoutCompact is used for terminals narrower than 60 characters.
	LayoutCompact LayoutSize = iota
	// LayoutNormal is used for terminals between 60 and 120 characters wide.
	LayoutNormal
	// LayoutWide is used for terminals wider than 120 characters.
	LayoutWide
)

// DetectLayout returns the appropriate LayoutSize for the given terminal width.
func DetectLayout(width int) LayoutSize {
	switch {
	case width < 60:
		return LayoutCompact
	case width <= 120:
		return LayoutNormal
	default:
		return LayoutWide
	}
}

// Charts smaller than this fall back to sparklines.
const (
	minChartCols = 10
	minChartRows = 2
)

// footerHeight is the info line plus the help line.
const footerHeight = 2

// chartOrder is the on-screen order of the chart panels.
var chartOrder = []string{dashboard.MetricCPU, dashboard.MetricTemperature, dashboard.MetricNetwork}

// chartBox is the body of a chart panel in terminal cells.
type chartBox struct {
	cols, rows int
}

// drawable reports whether the box is large enough for a raster.
func (b chartBox) drawable() bool {
	return b.cols >= minChartCols && b.rows >= minChartRows
}

// pixels returns the raster size behind the box: one column and two rows
// of pixels per cell.
func (b chartBox) pixels() (w, h int) {
	return b.cols, b.rows * 2
}

// layout is the geometry of one screen.
type layout struct {
	size         LayoutSize
	gaugeColumns int
	gaugeWidth   int
	boxes        map[string]chartBox
}

// gaugeRows is the number of lines the gauge block occupies.
func (l layout) gaugeRows() int {
	return (4 + l.gaugeColumns - 1) / l.gaugeColumns
}

// computeLayout splits a width x height screen into the gauge block and
// the chart panels. When expanded names a chart, it takes the whole chart
// area and the other charts get empty boxes.
func computeLayout(width, height int, st styles, expanded string) layout {
	l := layout{size: DetectLayout(width), gaugeColumns: 2, boxes: make(map[string]chartBox, len(chartOrder))}
	if l.size == LayoutCompact {
		l.gaugeColumns = 1
	}
	// label (4) + spaces (2) + value (5) + column gap (2)
	l.gaugeWidth = min(max(width/l.gaugeColumns-13, 5), 40)

	avail := height - st.headerHeight() - l.gaugeRows() - footerHeight
	fw, fh := st.frame()
	body := func(w, h int) chartBox {
		return chartBox{cols: max(w-fw, 0), rows: max(h-fh-1, 0)}
	}

	for _, name := range chartOrder {
		l.boxes[name] = chartBox{}
	}
	switch {
	case expanded != "":
		l.boxes[expanded] = body(width, avail)
	case l.size == LayoutWide:
		for _, name := range chartOrder {
			l.boxes[name] = body(width/len(chartOrder), avail)
		}
	default:
		for _, name := range chartOrder {
			l.boxes[name] = body(width, avail/len(chartOrder))
		}
	}
	return l
}

// sectionTitle renders a centered title with horizontal rules on either side.
// Format: "---- Title ----"
func sectionTitle(title string, width int) string {
	if width <= 0 {
		return title
	}

	titleLen := len([]rune(title))
	decorLen := titleLen + 2
	if decorLen >= width {
		return title
	}

	remaining := width - decorLen
	leftLen := remaining / 2
	rightLen := remaining - leftLen

	return strings.Repeat("─", leftLen) + " " + title + " " + strings.Repeat("─", rightLen)
}
