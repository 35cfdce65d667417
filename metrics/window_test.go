package metrics

import (
	"math"
	"testing"
)

func TestWindow_PushBelowCapacity(t *testing.T) {
	w := NewWindow[float64](5)
	w.Push(1)
	w.Push(2)
	w.Push(3)

	got := w.Values()
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if w.Cap() != 5 {
		t.Errorf("expected Cap()=5, got %d", w.Cap())
	}
}

func TestWindow_EvictsOldest(t *testing.T) {
	const capacity = DefaultWindowCapacity
	for _, extra := range []int{0, 1, 7, capacity, 3*capacity + 11} {
		w := NewWindow[float64](capacity)
		total := capacity + extra
		for i := 0; i < total; i++ {
			w.Push(float64(i))
		}

		got := w.Values()
		if len(got) != capacity {
			t.Fatalf("pushed %d: expected length %d, got %d", total, capacity, len(got))
		}
		for i, v := range got {
			want := float64(total - capacity + i)
			if v != want {
				t.Fatalf("pushed %d: values[%d] = %v, want %v", total, i, v, want)
			}
		}
	}
}

func TestWindow_ValuesIsCopy(t *testing.T) {
	w := NewWindow[float64](3)
	w.Push(10)
	vals := w.Values()
	vals[0] = 99

	if got := w.Values()[0]; got != 10 {
		t.Errorf("mutating Values() result changed the window: got %v", got)
	}
}

func TestWindow_Last(t *testing.T) {
	w := NewWindow[int](2)
	if _, ok := w.Last(); ok {
		t.Error("expected Last() on empty window to report false")
	}
	w.Push(1)
	w.Push(2)
	w.Push(3)
	if v, ok := w.Last(); !ok || v != 3 {
		t.Errorf("expected Last()=3,true got %v,%v", v, ok)
	}
}

func TestWindow_MinimumCapacity(t *testing.T) {
	w := NewWindow[float64](0)
	w.Push(1)
	w.Push(2)
	if w.Len() != 1 || w.Values()[0] != 2 {
		t.Errorf("expected single-slot window holding 2, got %v", w.Values())
	}
}

func TestWindow_PassesNonFiniteThrough(t *testing.T) {
	w := NewWindow[float64](2)
	w.Push(math.Inf(1))
	if !math.IsInf(w.Values()[0], 1) {
		t.Error("window must store values unfiltered")
	}
}

func TestWindow_RateSamplesStayPaired(t *testing.T) {
	w := NewWindow[RateSample](3)
	for i := 0; i < 5; i++ {
		w.Push(RateSample{Rx: float64(i), Tx: float64(i * 10)})
	}
	rx, tx := SplitRates(w.Values())
	if len(rx) != len(tx) || len(rx) != 3 {
		t.Fatalf("expected 3 paired samples, got rx=%d tx=%d", len(rx), len(tx))
	}
	if rx[0] != 2 || tx[0] != 20 || rx[2] != 4 || tx[2] != 40 {
		t.Errorf("unexpected split: rx=%v tx=%v", rx, tx)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		in     float64
		want   float64
		wantOK bool
	}{
		{"finite", 42.5, 42.5, true},
		{"zero", 0, 0, true},
		{"negative clamped", -3, 0, true},
		{"nan rejected", math.NaN(), 0, false},
		{"+inf rejected", math.Inf(1), 0, false},
		{"-inf rejected", math.Inf(-1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sanitize(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Sanitize(%v) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
