package gauge

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRenderCircularGauge_Thresholds(t *testing.T) {
	tests := []struct {
		percent float64
		want    Level
	}{
		{0, LevelOK},
		{59.9, LevelOK},
		{60.0, LevelWarn},
		{79.9, LevelWarn},
		{80.0, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		if got := RenderCircularGauge(tt.percent).Level; got != tt.want {
			t.Errorf("RenderCircularGauge(%v).Level = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestRenderCircularGauge_StrokeOffset(t *testing.T) {
	c := 2 * math.Pi * DefaultRadius
	tests := []struct {
		percent float64
		offset  float64
	}{
		{0, c},
		{25, c * 0.75},
		{50, c / 2},
		{100, 0},
	}
	for _, tt := range tests {
		g := RenderCircularGauge(tt.percent)
		if math.Abs(g.StrokeOffset-tt.offset) > 1e-9 {
			t.Errorf("percent %v: offset %v, want %v", tt.percent, g.StrokeOffset, tt.offset)
		}
		if math.Abs(g.Circumference-c) > 1e-9 {
			t.Errorf("percent %v: circumference %v, want %v", tt.percent, g.Circumference, c)
		}
		if math.Abs(g.Fraction()-tt.percent/100) > 1e-9 {
			t.Errorf("percent %v: fraction %v", tt.percent, g.Fraction())
		}
	}
}

func TestRenderCircularGauge_DisplayValue(t *testing.T) {
	tests := []struct {
		percent float64
		want    int
	}{
		{0.4, 0},
		{0.5, 1},
		{59.9, 60},
		{99.49, 99},
	}
	for _, tt := range tests {
		if got := RenderCircularGauge(tt.percent).DisplayValue; got != tt.want {
			t.Errorf("DisplayValue(%v) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestRenderCircularGauge_Clamps(t *testing.T) {
	over := RenderCircularGauge(150)
	if over.StrokeOffset != 0 || over.DisplayValue != 100 {
		t.Errorf("expected clamp to 100, got %+v", over)
	}
	under := RenderCircularGauge(-20)
	if under.StrokeOffset != under.Circumference || under.DisplayValue != 0 || under.Level != LevelOK {
		t.Errorf("expected clamp to 0, got %+v", under)
	}
	nan := RenderCircularGauge(math.NaN())
	if nan.DisplayValue != 0 || math.IsNaN(nan.StrokeOffset) {
		t.Errorf("expected NaN treated as 0, got %+v", nan)
	}
}

func TestRenderCircularGauge_Idempotent(t *testing.T) {
	if RenderCircularGauge(42.42) != RenderCircularGauge(42.42) {
		t.Error("expected identical results for identical input")
	}
}

func TestRing_CustomThresholds(t *testing.T) {
	r := Ring{Radius: 10, Thresholds: Thresholds{Warn: 50, Critical: 90}}
	if got := r.Render(55).Level; got != LevelWarn {
		t.Errorf("expected warn at 55 with warn=50, got %s", got)
	}
	if got := r.Render(89).Level; got != LevelWarn {
		t.Errorf("expected warn at 89 with critical=90, got %s", got)
	}
}

func TestRenderLinearFill(t *testing.T) {
	tests := []struct {
		celsius float64
		fill    float64
		display int
	}{
		{0, 0, 0},
		{45.6, 45.6, 46},
		{100, 100, 100},
		{130, 100, 130},
		{-5, 0, 0},
	}
	for _, tt := range tests {
		got := RenderLinearFill(tt.celsius)
		if math.Abs(got.FillPercent-tt.fill) > 1e-9 || got.DisplayValue != tt.display {
			t.Errorf("RenderLinearFill(%v) = %+v, want fill=%v display=%d", tt.celsius, got, tt.fill, tt.display)
		}
	}
}

func TestLevel_MarshalsByName(t *testing.T) {
	data, err := json.Marshal(RenderCircularGauge(85))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["level"] != "critical" {
		t.Errorf("expected level \"critical\", got %v", decoded["level"])
	}
}

func TestLevel_UnmarshalText(t *testing.T) {
	var g CircularGauge
	if err := json.Unmarshal([]byte(`{"level":"warn"}`), &g); err != nil {
		t.Fatal(err)
	}
	if g.Level != LevelWarn {
		t.Errorf("expected warn, got %s", g.Level)
	}
	if err := json.Unmarshal([]byte(`{"level":"purple"}`), &g); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
