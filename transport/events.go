package transport

import (
	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

// EventKind identifies an Event.
type EventKind int

const (
	EventSnapshot EventKind = iota
	EventState
	EventStreamReset
)

// Event is one Handler call captured as a value, for consumers that process
// events on their own goroutine.
type Event struct {
	Kind     EventKind
	Snapshot metrics.Snapshot
	State    metrics.ConnectionState
}

// Events is a Handler that forwards every call onto a channel. Sends block,
// so the reader applies backpressure to the stream.
type Events chan Event

// NewEvents returns an Events channel with the given buffer size.
func NewEvents(buffer int) Events {
	return make(Events, buffer)
}

func (e Events) OnSnapshot(s metrics.Snapshot) {
	e <- Event{Kind: EventSnapshot, Snapshot: s}
}

func (e Events) OnConnectionStateChange(s metrics.ConnectionState) {
	e <- Event{Kind: EventState, State: s}
}

func (e Events) OnStreamReset() {
	e <- Event{Kind: EventStreamReset}
}
