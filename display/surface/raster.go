package surface

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Raster is a Surface backed by an RGBA image. Paths are rasterized by the
// go-chart drawing context. With an oversample factor above 1 the image is
// painted at a multiple of the logical size and downscaled on read, which
// smooths diagonal strokes on small targets such as terminal cells.
type Raster struct {
	width, height int
	scale         int
	background    color.Color

	img *image.RGBA
	gc  *drawing.RasterGraphicContext
}

// NewRaster creates a raster of the given logical size. background is a hex
// color used by Clear; an empty string clears to transparent.
func NewRaster(width, height, oversample int, background string) *Raster {
	if oversample < 1 {
		oversample = 1
	}
	r := &Raster{scale: oversample, background: color.Transparent}
	if background != "" {
		r.background = ParseHex(background)
	}
	r.Resize(width, height)
	return r
}

// Resize reallocates the backing image. Previously drawn content is lost;
// callers redraw after a resize.
func (r *Raster) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if r.img != nil && width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.img = image.NewRGBA(image.Rect(0, 0, width*r.scale, height*r.scale))
	r.gc = nil
	if width > 0 && height > 0 {
		// NewRasterGraphicContext only rejects non-RGBA images.
		r.gc, _ = drawing.NewRasterGraphicContext(r.img)
	}
	r.Clear()
}

// Size implements Surface.
func (r *Raster) Size() (int, int) { return r.width, r.height }

// Clear implements Surface.
func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
}

// Stroke implements Surface.
func (r *Raster) Stroke(points []Point, style Style) {
	if r.gc == nil || len(points) < 2 {
		return
	}
	width := style.LineWidth
	if width <= 0 {
		width = 1
	}
	r.gc.SetStrokeColor(withOpacity(ParseHex(style.Color), style.Opacity()))
	r.gc.SetLineWidth(width * float64(r.scale))
	r.trace(points, false)
	r.gc.Stroke()
}

// Fill implements Surface.
func (r *Raster) Fill(points []Point, style Style) {
	if r.gc == nil || len(points) < 3 {
		return
	}
	r.gc.SetFillColor(withOpacity(ParseHex(style.Color), style.Opacity()))
	r.trace(points, true)
	r.gc.Fill()
}

func (r *Raster) trace(points []Point, closed bool) {
	s := float64(r.scale)
	r.gc.BeginPath()
	r.gc.MoveTo(points[0].X*s, points[0].Y*s)
	for _, p := range points[1:] {
		r.gc.LineTo(p.X*s, p.Y*s)
	}
	if closed {
		r.gc.Close()
	}
}

// Image returns the painted image at logical size.
func (r *Raster) Image() image.Image {
	if r.scale == 1 || r.width == 0 || r.height == 0 {
		return r.img
	}
	return imaging.Resize(r.img, r.width, r.height, imaging.Lanczos)
}

// ParseHex converts "#rrggbb" or "#rgb" into an opaque color. Malformed
// input yields opaque black.
func ParseHex(hex string) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return drawing.Color{A: 255}
	}
	for _, c := range hex {
		if !isHexDigit(c) {
			return drawing.Color{A: 255}
		}
	}
	return drawing.ColorFromHex(hex)
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func withOpacity(c drawing.Color, opacity float64) drawing.Color {
	c.A = uint8(opacity*255 + 0.5)
	return c
}
