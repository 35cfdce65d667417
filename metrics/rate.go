package metrics

import "math"

// MiB is the default rate unit: rates are reported in MiB per interval.
const MiB = 1 << 20

// RateSample is one derived network rate observation. Rx and Tx travel
// together so a window of samples can never hold unequal series lengths.
type RateSample struct {
	Rx float64 `json:"rx"`
	Tx float64 `json:"tx"`
}

// SplitRates unzips rate samples into parallel rx and tx series.
func SplitRates(samples []RateSample) (rx, tx []float64) {
	rx = make([]float64, len(samples))
	tx = make([]float64, len(samples))
	for i, s := range samples {
		rx[i] = s.Rx
		tx[i] = s.Tx
	}
	return rx, tx
}

// RateEstimator converts successive cumulative (rx, tx) counter readings into
// per-interval rates. A reading lower than its predecessor (counter reset,
// agent restart) yields a zero rate instead of a negative one.
type RateEstimator struct {
	unit    float64
	prevRx  uint64
	prevTx  uint64
	hasPrev bool
}

// NewRateEstimator returns an estimator dividing byte deltas by unit.
// A non-positive unit falls back to MiB.
func NewRateEstimator(unit float64) *RateEstimator {
	if unit <= 0 || math.IsNaN(unit) || math.IsInf(unit, 0) {
		unit = MiB
	}
	return &RateEstimator{unit: unit}
}

// Observe records a counter pair. The first call after construction or
// Reset has nothing to diff against and returns false.
func (e *RateEstimator) Observe(rx, tx uint64) (RateSample, bool) {
	if !e.hasPrev {
		e.prevRx, e.prevTx, e.hasPrev = rx, tx, true
		return RateSample{}, false
	}

	sample := RateSample{
		Rx: e.delta(rx, e.prevRx),
		Tx: e.delta(tx, e.prevTx),
	}
	e.prevRx, e.prevTx = rx, tx
	return sample, true
}

// delta computes max(0, (cur-prev)/unit) without unsigned wraparound.
func (e *RateEstimator) delta(cur, prev uint64) float64 {
	if cur <= prev {
		return 0
	}
	return float64(cur-prev) / e.unit
}

// Reset forgets the stored pair. The next Observe returns false.
func (e *RateEstimator) Reset() {
	e.prevRx, e.prevTx, e.hasPrev = 0, 0, false
}

// Primed reports whether a previous reading is stored.
func (e *RateEstimator) Primed() bool { return e.hasPrev }

// Unit returns the divisor applied to byte deltas.
func (e *RateEstimator) Unit() float64 { return e.unit }
