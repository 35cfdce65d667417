// Package widgets provides the lipgloss text components of the dashboard:
// bar gauges, the connection indicator and sparkline chart fallbacks.
package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/pulse-view/display/color"
	"gitlab.com/tinyland/lab/pulse-view/display/gauge"
)

// GaugeConfig controls the appearance of a horizontal bar gauge.
type GaugeConfig struct {
	// Width is the total character width of the gauge bar.
	Width int
	// Fill is the filled share of the bar, 0 to 100.
	Fill float64
	// Level picks the fill color from Palette.
	Level gauge.Level
	// Label is optional text shown to the left of the bar.
	Label string
	// Value is optional text shown to the right, e.g. "42%".
	Value string
	// Palette supplies the level colors.
	Palette color.Palette
	// FilledChar is the character for filled portion (default: "█").
	FilledChar string
	// EmptyChar is the character for empty portion (default: "░").
	EmptyChar string
}

// DefaultGaugeConfig returns a GaugeConfig with sensible defaults.
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		Width:      20,
		Palette:    color.DefaultPalette(),
		FilledChar: "█",
		EmptyChar:  "░",
	}
}

// RenderGauge renders a horizontal bar gauge with optional label and value.
// Format: [Label] [████████░░░░] [Value]
func RenderGauge(cfg GaugeConfig) string {
	fill := cfg.Fill
	if math.IsNaN(fill) {
		fill = 0
	}
	fill = math.Max(0, math.Min(100, fill))

	filledChar := cfg.FilledChar
	if filledChar == "" {
		filledChar = "█"
	}
	emptyChar := cfg.EmptyChar
	if emptyChar == "" {
		emptyChar = "░"
	}
	width := cfg.Width
	if width <= 0 {
		width = 20
	}

	filledCount := int(math.Round(fill / 100.0 * float64(width)))
	style := lipgloss.NewStyle().Foreground(cfg.Palette.ForLevel(cfg.Level))
	bar := style.Render(strings.Repeat(filledChar, filledCount)) +
		lipgloss.NewStyle().Foreground(cfg.Palette.Muted).Render(strings.Repeat(emptyChar, width-filledCount))

	var sb strings.Builder
	if cfg.Label != "" {
		sb.WriteString(cfg.Label)
		sb.WriteString(" ")
	}
	sb.WriteString(bar)
	if cfg.Value != "" {
		sb.WriteString(" ")
		sb.WriteString(cfg.Value)
	}
	return sb.String()
}

// CircularBar renders a ring gauge as a bar: the fill is the ring's filled
// fraction and the value its rounded display number.
func CircularBar(label string, g gauge.CircularGauge, width int, p color.Palette) string {
	return RenderGauge(GaugeConfig{
		Width:   width,
		Fill:    g.Fraction() * 100,
		Level:   g.Level,
		Label:   label,
		Value:   fmt.Sprintf("%3d%%", g.DisplayValue),
		Palette: p,
	})
}

// TemperatureBar renders a linear temperature fill. Its level follows the
// fill percentage on the given thresholds.
func TemperatureBar(label string, f gauge.LinearFill, t gauge.Thresholds, width int, p color.Palette) string {
	return RenderGauge(GaugeConfig{
		Width:   width,
		Fill:    f.FillPercent,
		Level:   t.Level(f.FillPercent),
		Label:   label,
		Value:   fmt.Sprintf("%3d°C", f.DisplayValue),
		Palette: p,
	})
}
