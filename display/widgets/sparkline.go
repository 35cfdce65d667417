package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks contains 8 unicode block characters for sparkline rendering,
// ordered from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SparklineConfig controls the appearance of a sparkline chart.
type SparklineConfig struct {
	// Data points to render (most recent last).
	Data []float64
	// Width is the number of characters to render. If 0, uses len(Data).
	Width int
	// Min is the minimum value for scaling. If Min == Max, auto-scale.
	Min float64
	// Max is the maximum value for scaling.
	Max float64
	// Label is optional text shown before the sparkline.
	Label string
	// Color is the lipgloss color for the sparkline characters.
	Color lipgloss.Color
}

// RenderSparkline renders a unicode sparkline chart from the given configuration.
// Non-finite points render as the lowest block.
func RenderSparkline(cfg SparklineConfig) string {
	if len(cfg.Data) == 0 {
		return ""
	}

	data := cfg.Data
	width := cfg.Width
	if width <= 0 {
		width = len(data)
	}
	if width < len(data) {
		data = data[len(data)-width:]
	}

	minVal, maxVal := cfg.Min, cfg.Max
	if minVal == maxVal {
		minVal, maxVal = bounds(data)
	}

	runes := make([]rune, 0, len(data))
	allEqual := minVal == maxVal
	for _, v := range data {
		if allEqual {
			runes = append(runes, sparkBlocks[len(sparkBlocks)/2])
			continue
		}
		normalized := (v - minVal) / (maxVal - minVal)
		if math.IsNaN(normalized) {
			normalized = 0
		}
		normalized = math.Max(0, math.Min(1, normalized))
		idx := int(normalized * float64(len(sparkBlocks)-1))
		runes = append(runes, sparkBlocks[idx])
	}

	sparkStr := string(runes)
	if width > len(data) {
		sparkStr = strings.Repeat(" ", width-len(data)) + sparkStr
	}
	if cfg.Color != "" {
		sparkStr = lipgloss.NewStyle().Foreground(cfg.Color).Render(sparkStr)
	}
	if cfg.Label != "" {
		sparkStr = cfg.Label + " " + sparkStr
	}
	return sparkStr
}

// RenderChartFallback renders a series as a sparkline using the same
// vertical scale as the line chart: at least [0,100], widened to the data.
func RenderChartFallback(data []float64, width int, c lipgloss.Color) string {
	lo, hi := bounds(data)
	return RenderSparkline(SparklineConfig{
		Data:  data,
		Width: width,
		Min:   math.Min(lo, 0),
		Max:   math.Max(hi, 100),
		Color: c,
	})
}

// RenderDualFallback renders two series stacked as sparklines sharing one
// peak, floored at 1, like the dual-series chart.
func RenderDualFallback(a, b []float64, width int, ca, cb lipgloss.Color) string {
	_, ha := bounds(a)
	_, hb := bounds(b)
	peak := math.Max(1, math.Max(ha, hb))
	top := RenderSparkline(SparklineConfig{Data: a, Width: width, Min: 0, Max: peak, Color: ca})
	bottom := RenderSparkline(SparklineConfig{Data: b, Width: width, Min: 0, Max: peak, Color: cb})
	return top + "\n" + bottom
}

func bounds(data []float64) (lo, hi float64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi = data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
