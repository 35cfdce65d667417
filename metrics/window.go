package metrics

// Window is a fixed-capacity FIFO of samples, oldest first. Pushing into a
// full window evicts the oldest sample, so Len never exceeds Cap.
//
// The backing array is allocated once and reused as a ring.
type Window[T any] struct {
	buf   []T
	start int
	n     int
}

// NewWindow creates an empty window. A capacity below 1 is raised to 1.
func NewWindow[T any](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Window[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest sample when the window is full.
func (w *Window[T]) Push(v T) {
	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = v
		w.n++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

// Values returns a copy of the samples, oldest first.
func (w *Window[T]) Values() []T {
	out := make([]T, w.n)
	for i := 0; i < w.n; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Last returns the newest sample and whether the window is non-empty.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if w.n == 0 {
		return zero, false
	}
	return w.buf[(w.start+w.n-1)%len(w.buf)], true
}

// Len returns the number of samples held.
func (w *Window[T]) Len() int { return w.n }

// Cap returns the configured capacity.
func (w *Window[T]) Cap() int { return len(w.buf) }
