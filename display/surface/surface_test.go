package surface

import (
	"testing"
)

func TestRecorder_RecordsInOrder(t *testing.T) {
	r := NewRecorder(100, 50)
	r.Clear()
	r.Stroke([]Point{{0, 0}, {10, 10}}, Style{Color: "#fff", LineWidth: 2})
	r.Fill([]Point{{0, 0}, {10, 10}, {0, 10}}, Style{Color: "#fff", Alpha: 0.2})

	if len(r.Ops) != 3 {
		t.Fatalf("expected 3 ops, got %d", len(r.Ops))
	}
	kinds := []OpKind{OpClear, OpStroke, OpFill}
	for i, k := range kinds {
		if r.Ops[i].Kind != k {
			t.Errorf("op[%d] = %s, want %s", i, r.Ops[i].Kind, k)
		}
	}
	if r.Count(OpStroke) != 1 {
		t.Errorf("expected 1 stroke, got %d", r.Count(OpStroke))
	}
}

func TestRecorder_ClonesPoints(t *testing.T) {
	r := NewRecorder(10, 10)
	pts := []Point{{1, 1}, {2, 2}}
	r.Stroke(pts, Style{})
	pts[0].X = 99
	if r.Ops[0].Points[0].X != 1 {
		t.Error("recorder must not alias caller slices")
	}
}

func TestRecorder_Since(t *testing.T) {
	r := NewRecorder(10, 10)
	r.Stroke([]Point{{0, 0}, {1, 1}}, Style{})
	r.Clear()
	if got := len(r.Since()); got != 0 {
		t.Errorf("expected nothing visible after Clear, got %d ops", got)
	}
	r.Stroke([]Point{{0, 0}, {1, 1}}, Style{})
	if got := len(r.Since()); got != 1 {
		t.Errorf("expected 1 visible op, got %d", got)
	}
}

func TestReady(t *testing.T) {
	if Ready(nil) {
		t.Error("nil surface must not be ready")
	}
	if Ready(NewRecorder(0, 10)) {
		t.Error("zero-width surface must not be ready")
	}
	if !Ready(NewRecorder(1, 1)) {
		t.Error("1x1 surface must be ready")
	}
}

func TestStyle_Opacity(t *testing.T) {
	tests := []struct {
		alpha, want float64
	}{
		{0, 1},
		{-1, 1},
		{0.2, 0.2},
		{3, 1},
	}
	for _, tt := range tests {
		if got := (Style{Alpha: tt.alpha}).Opacity(); got != tt.want {
			t.Errorf("Opacity(%v) = %v, want %v", tt.alpha, got, tt.want)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
	}{
		{"#ff6b6b", 0xff, 0x6b, 0x6b},
		{"51cf66", 0x51, 0xcf, 0x66},
		{"#fff", 0xff, 0xff, 0xff},
		{"bogus", 0, 0, 0},
		{"#zzzzzz", 0, 0, 0},
	}
	for _, tt := range tests {
		c := ParseHex(tt.in)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
			t.Errorf("ParseHex(%q) = %+v, want rgb(%d,%d,%d) opaque", tt.in, c, tt.r, tt.g, tt.b)
		}
	}
}

func TestRaster_StrokePaintsPixels(t *testing.T) {
	r := NewRaster(20, 10, 1, "#000000")
	r.Stroke([]Point{{0, 5}, {20, 5}}, Style{Color: "#ff0000", LineWidth: 2})

	img := r.Image()
	red, _, _, _ := img.At(10, 5).RGBA()
	if red>>8 < 128 {
		t.Errorf("expected stroked pixel to be red, got r=%d", red>>8)
	}
	_, _, _, a := img.At(10, 9).RGBA()
	rr, gg, bb, _ := img.At(10, 9).RGBA()
	if rr != 0 || gg != 0 || bb != 0 || a>>8 != 255 {
		t.Errorf("expected untouched pixel to keep the background, got %d,%d,%d,%d", rr>>8, gg>>8, bb>>8, a>>8)
	}
}

func TestRaster_FillHonorsAlpha(t *testing.T) {
	r := NewRaster(10, 10, 1, "#000000")
	r.Fill([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, Style{Color: "#ffffff", Alpha: 0.2})

	red, _, _, _ := r.Image().At(5, 5).RGBA()
	if v := red >> 8; v < 30 || v > 80 {
		t.Errorf("expected a translucent fill around 51, got %d", v)
	}
}

func TestRaster_ClearRestoresBackground(t *testing.T) {
	r := NewRaster(10, 10, 1, "#000000")
	r.Fill([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, Style{Color: "#ffffff"})
	r.Clear()
	red, _, _, _ := r.Image().At(5, 5).RGBA()
	if red != 0 {
		t.Errorf("expected cleared pixel, got r=%d", red>>8)
	}
}

func TestRaster_OversampledImageHasLogicalSize(t *testing.T) {
	r := NewRaster(20, 10, 3, "#000000")
	b := r.Image().Bounds()
	if b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("expected 20x10 image, got %dx%d", b.Dx(), b.Dy())
	}

	r.Resize(8, 4)
	if w, h := r.Size(); w != 8 || h != 4 {
		t.Errorf("expected Size()=8x4 after resize, got %dx%d", w, h)
	}
	b = r.Image().Bounds()
	if b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("expected 8x4 image after resize, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRaster_ZeroSizeIgnoresDrawing(t *testing.T) {
	r := NewRaster(0, 0, 2, "")
	r.Stroke([]Point{{0, 0}, {1, 1}}, Style{Color: "#fff"})
	r.Fill([]Point{{0, 0}, {1, 0}, {1, 1}}, Style{Color: "#fff"})
	if Ready(r) {
		t.Error("zero-size raster must not be ready")
	}
}
