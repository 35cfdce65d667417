// Package surface defines the 2D drawing target the chart renderers paint on
// and provides two implementations: Recorder, which captures operations for
// inspection, and Raster, which paints into an RGBA image.
package surface

// Point is a position in surface pixels. The origin is the top-left corner
// and Y grows downward.
type Point struct {
	X, Y float64
}

// Style describes how a path is painted.
type Style struct {
	// Color is a hex color such as "#667eea".
	Color string
	// LineWidth is the stroke width in pixels. Ignored by Fill.
	LineWidth float64
	// Alpha is the opacity in [0,1]. Zero is treated as fully opaque.
	Alpha float64
}

// Opacity returns Alpha with the zero value mapped to 1 and the result
// clamped to [0,1].
func (s Style) Opacity() float64 {
	switch {
	case s.Alpha <= 0:
		return 1
	case s.Alpha > 1:
		return 1
	default:
		return s.Alpha
	}
}

// Surface is a drawing context with a fixed pixel size.
type Surface interface {
	// Size returns the drawable width and height in pixels.
	Size() (width, height int)
	// Clear erases everything drawn so far.
	Clear()
	// Stroke draws an open polyline through points in order.
	Stroke(points []Point, style Style)
	// Fill paints the closed polygon described by points.
	Fill(points []Point, style Style)
}

// Ready reports whether s can be drawn on: non-nil with a positive size.
func Ready(s Surface) bool {
	if s == nil {
		return false
	}
	w, h := s.Size()
	return w > 0 && h > 0
}
