package surface

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpClear OpKind = iota
	OpStroke
	OpFill
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpStroke:
		return "stroke"
	case OpFill:
		return "fill"
	default:
		return "unknown"
	}
}

// Op is one recorded call on a Recorder.
type Op struct {
	Kind   OpKind
	Points []Point
	Style  Style
}

// Recorder is a Surface that remembers every call instead of painting.
type Recorder struct {
	Width, Height int
	Ops           []Op
}

// NewRecorder returns a Recorder of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

// Size implements Surface.
func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

// Clear implements Surface.
func (r *Recorder) Clear() {
	r.Ops = append(r.Ops, Op{Kind: OpClear})
}

// Stroke implements Surface.
func (r *Recorder) Stroke(points []Point, style Style) {
	r.Ops = append(r.Ops, Op{Kind: OpStroke, Points: clonePoints(points), Style: style})
}

// Fill implements Surface.
func (r *Recorder) Fill(points []Point, style Style) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Points: clonePoints(points), Style: style})
}

// Reset discards recorded operations.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

// Count returns how many operations of kind k were recorded.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Since returns the operations recorded after the most recent Clear,
// i.e. what is currently visible.
func (r *Recorder) Since() []Op {
	for i := len(r.Ops) - 1; i >= 0; i-- {
		if r.Ops[i].Kind == OpClear {
			return r.Ops[i+1:]
		}
	}
	return r.Ops
}

func clonePoints(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
