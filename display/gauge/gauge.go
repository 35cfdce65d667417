// Package gauge maps a single metric value to the visual parameters of a
// gauge: the dash offset of a circular ring, the fill width of a linear bar,
// the rounded number shown beside it, and a severity level for coloring.
// Every function here is pure.
package gauge

import (
	"fmt"
	"math"
)

// DefaultRadius is the ring radius used by RenderCircularGauge.
const DefaultRadius = 50.0

// MaxTemperature is the temperature that fills a linear gauge completely.
const MaxTemperature = 100.0

// Level is the severity tier of a gauge value.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelCritical
)

// String returns "ok", "warn" or "critical".
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelWarn:
		return "warn"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText lets levels serialize by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a level name written by MarshalText.
func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ok":
		*l = LevelOK
	case "warn":
		*l = LevelWarn
	case "critical":
		*l = LevelCritical
	default:
		return fmt.Errorf("gauge: unknown level %q", text)
	}
	return nil
}

// Thresholds are the lower bounds of the warn and critical tiers.
type Thresholds struct {
	Warn     float64 `yaml:"warn"`
	Critical float64 `yaml:"critical"`
}

// DefaultThresholds: below 60 ok, below 80 warn, otherwise critical.
func DefaultThresholds() Thresholds {
	return Thresholds{Warn: 60, Critical: 80}
}

// Level classifies a percentage.
func (t Thresholds) Level(percent float64) Level {
	switch {
	case percent < t.Warn:
		return LevelOK
	case percent < t.Critical:
		return LevelWarn
	default:
		return LevelCritical
	}
}

// CircularGauge holds the parameters of a ring drawn with a dash pattern of
// one circumference: the ring fills as StrokeOffset shrinks toward zero.
type CircularGauge struct {
	Percent       float64 `json:"percent"`
	Circumference float64 `json:"circumference"`
	StrokeOffset  float64 `json:"stroke_offset"`
	DisplayValue  int     `json:"display_value"`
	Level         Level   `json:"level"`
}

// Fraction returns the filled share of the ring in [0,1].
func (g CircularGauge) Fraction() float64 {
	if g.Circumference == 0 {
		return 0
	}
	return 1 - g.StrokeOffset/g.Circumference
}

// Ring renders circular gauges of a fixed radius.
type Ring struct {
	Radius     float64
	Thresholds Thresholds
}

// DefaultRing returns a ring of DefaultRadius with DefaultThresholds.
func DefaultRing() Ring {
	return Ring{Radius: DefaultRadius, Thresholds: DefaultThresholds()}
}

// Render computes the gauge for a percentage. Values outside [0,100] are
// clamped and NaN is treated as zero.
func (r Ring) Render(percent float64) CircularGauge {
	p := clampPercent(percent)
	c := 2 * math.Pi * r.Radius
	return CircularGauge{
		Percent:       p,
		Circumference: c,
		StrokeOffset:  c - p/100*c,
		DisplayValue:  int(math.Round(p)),
		Level:         r.Thresholds.Level(p),
	}
}

// RenderCircularGauge renders a percentage on the default ring.
func RenderCircularGauge(percent float64) CircularGauge {
	return DefaultRing().Render(percent)
}

// LinearFill holds the parameters of a horizontal fill bar.
type LinearFill struct {
	FillPercent  float64 `json:"fill_percent"`
	DisplayValue int     `json:"display_value"`
}

// RenderLinearFill maps a temperature to a bar that is full at
// MaxTemperature. The display value is the rounded temperature itself.
func RenderLinearFill(celsius float64) LinearFill {
	if math.IsNaN(celsius) {
		celsius = 0
	}
	fill := math.Min(celsius/MaxTemperature*100, 100)
	if fill < 0 {
		fill = 0
	}
	return LinearFill{
		FillPercent:  fill,
		DisplayValue: int(math.Round(math.Max(celsius, 0))),
	}
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}
