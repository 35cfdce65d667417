// Package chart draws time-series windows onto a surface.Surface. The
// renderers are stateless: every call clears the surface and repaints it
// from the series it is given, so a redraw with the same input always
// produces the same operations.
package chart

import (
	"errors"

	"gitlab.com/tinyland/lab/pulse-view/display/surface"
)

// ErrSurfaceUnavailable is returned when the target is nil or has no area.
// Nothing is drawn; the caller retries on the next event.
var ErrSurfaceUnavailable = errors.New("chart: drawing surface unavailable")

const (
	// LineWidth is the stroke width of every series.
	LineWidth = 2.0
	// AreaAlpha is the opacity of the area fill under a line chart.
	AreaAlpha = 0.2

	// lineFloor and lineCeiling are always part of a line chart's value
	// range, which keeps percentage charts on a stable 0-100 scale.
	lineFloor   = 0.0
	lineCeiling = 100.0
	// rateFloor is the smallest maximum a dual-series chart scales to.
	rateFloor = 1.0
)

// RenderLine clears s and draws series as a stroked polyline with a
// translucent area fill down to the bottom edge.
//
// The vertical range always includes 0 and 100. Sample i is placed at
// i/(capacity-1) of the width, so a window that is not yet full is drawn
// compressed toward the left edge.
func RenderLine(s surface.Surface, series []float64, color string, capacity int) error {
	if !surface.Ready(s) {
		return ErrSurfaceUnavailable
	}
	s.Clear()
	if len(series) < 2 {
		return nil
	}

	width, height := s.Size()
	w, h := float64(width), float64(height)

	lo, hi := lineFloor, lineCeiling
	for _, v := range series {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	slots := xSlots(capacity, len(series))
	line := make([]surface.Point, len(series))
	for i, v := range series {
		line[i] = surface.Point{
			X: float64(i) / slots * w,
			Y: h - (v-lo)/span*h,
		}
	}

	s.Stroke(line, surface.Style{Color: color, LineWidth: LineWidth})

	area := make([]surface.Point, 0, len(line)+2)
	area = append(area, line...)
	area = append(area, surface.Point{X: w, Y: h}, surface.Point{X: 0, Y: h})
	s.Fill(area, surface.Style{Color: color, Alpha: AreaAlpha})

	return nil
}

// RenderDualSeries clears s and strokes a and b on a shared scale from 0 to
// max(a ∪ b ∪ {1}). Nothing is drawn unless a has at least two points.
func RenderDualSeries(s surface.Surface, a, b []float64, colorA, colorB string, capacity int) error {
	if !surface.Ready(s) {
		return ErrSurfaceUnavailable
	}
	s.Clear()
	if len(a) < 2 {
		return nil
	}

	width, height := s.Size()
	w, h := float64(width), float64(height)

	peak := rateFloor
	for _, series := range [][]float64{a, b} {
		for _, v := range series {
			if v > peak {
				peak = v
			}
		}
	}

	slots := xSlots(capacity, max(len(a), len(b)))
	for _, series := range []struct {
		values []float64
		color  string
	}{
		{a, colorA},
		{b, colorB},
	} {
		if len(series.values) < 2 {
			continue
		}
		line := make([]surface.Point, len(series.values))
		for i, v := range series.values {
			line[i] = surface.Point{
				X: float64(i) / slots * w,
				Y: h - v/peak*h,
			}
		}
		s.Stroke(line, surface.Style{Color: series.color, LineWidth: LineWidth})
	}

	return nil
}

// xSlots is the index that maps to the right edge. A capacity below 2 would
// divide by zero, so the series length stands in for it.
func xSlots(capacity, n int) float64 {
	if capacity < 2 {
		capacity = max(n, 2)
	}
	return float64(capacity - 1)
}
