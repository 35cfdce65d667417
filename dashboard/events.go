package dashboard

import (
	"gitlab.com/tinyland/lab/pulse-view/transport"
)

// Apply dispatches a transport event to the matching handler and returns
// the resulting frame.
func (c *Controller) Apply(ev transport.Event) Frame {
	switch ev.Kind {
	case transport.EventSnapshot:
		return c.OnSnapshot(ev.Snapshot)
	case transport.EventState:
		return c.OnConnectionStateChange(ev.State)
	case transport.EventStreamReset:
		c.OnStreamReset()
	}
	return c.frame(nil)
}
