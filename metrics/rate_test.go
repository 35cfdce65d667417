package metrics

import (
	"testing"
	"time"
)

func TestRateEstimator_FirstObserveUndefined(t *testing.T) {
	e := NewRateEstimator(MiB)
	if _, ok := e.Observe(123, 456); ok {
		t.Error("expected first Observe to return false")
	}
	if !e.Primed() {
		t.Error("expected estimator to be primed after first Observe")
	}
}

func TestRateEstimator_MiBRates(t *testing.T) {
	e := NewRateEstimator(1 << 20)
	e.Observe(0, 0)

	got, ok := e.Observe(1048576, 2097152)
	if !ok {
		t.Fatal("expected second Observe to return a sample")
	}
	if got.Rx != 1 || got.Tx != 2 {
		t.Errorf("expected {1 2}, got %+v", got)
	}
}

func TestRateEstimator_FractionalUnit(t *testing.T) {
	e := NewRateEstimator(MiB)
	e.Observe(0, 0)
	got, _ := e.Observe(MiB/2, MiB/4)
	if got.Rx != 0.5 || got.Tx != 0.25 {
		t.Errorf("expected fractional rates {0.5 0.25}, got %+v", got)
	}
}

func TestRateEstimator_CounterResetClamps(t *testing.T) {
	e := NewRateEstimator(MiB)
	e.Observe(1000, 1000)

	got, ok := e.Observe(500, 500)
	if !ok {
		t.Fatal("expected a sample after the counter went backwards")
	}
	if got.Rx != 0 || got.Tx != 0 {
		t.Errorf("expected {0 0}, got %+v", got)
	}

	// The lower reading becomes the new baseline.
	got, _ = e.Observe(500+MiB, 500)
	if got.Rx != 1 || got.Tx != 0 {
		t.Errorf("expected {1 0} after reset baseline, got %+v", got)
	}
}

func TestRateEstimator_IndependentChannels(t *testing.T) {
	e := NewRateEstimator(MiB)
	e.Observe(4*MiB, 0)
	got, _ := e.Observe(MiB, 3*MiB)
	if got.Rx != 0 || got.Tx != 3 {
		t.Errorf("expected rx clamped and tx=3, got %+v", got)
	}
}

func TestRateEstimator_Reset(t *testing.T) {
	e := NewRateEstimator(MiB)
	e.Observe(0, 0)
	e.Reset()
	if e.Primed() {
		t.Error("expected Reset to clear the stored pair")
	}
	if _, ok := e.Observe(100*MiB, 100*MiB); ok {
		t.Error("expected Observe after Reset to return false")
	}
}

func TestNewRateEstimator_InvalidUnit(t *testing.T) {
	for _, unit := range []float64{0, -1} {
		if got := NewRateEstimator(unit).Unit(); got != MiB {
			t.Errorf("NewRateEstimator(%v).Unit() = %v, want %v", unit, got, float64(MiB))
		}
	}
}

func TestSnapshot_TimestampMillis(t *testing.T) {
	var s Snapshot
	if s.TimestampMillis() != 0 {
		t.Errorf("expected 0 for zero timestamp, got %d", s.TimestampMillis())
	}
	s.Timestamp = time.UnixMilli(1700000000123)
	if s.TimestampMillis() != 1700000000123 {
		t.Errorf("expected 1700000000123, got %d", s.TimestampMillis())
	}
}

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateDisconnected, "disconnected"},
		{StateError, "error"},
		{ConnectionState(42), "unknown(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
