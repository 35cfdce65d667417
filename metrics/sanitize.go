package metrics

import "math"

// Sanitize applies the input policy for scalar samples before they reach a
// window or a renderer: NaN and ±Inf are rejected (ok is false), negative
// values are clamped to zero.
func Sanitize(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return v, true
}
