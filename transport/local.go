package transport

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/pulse-view/collectors"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

// Local feeds a Handler from an in-process sampler with the same event
// sequence a websocket connection produces: connecting, connected, a stream
// reset, then one snapshot per interval.
type Local struct {
	sampler  collectors.Sampler
	interval time.Duration
	handler  Handler
	logger   *slog.Logger
}

// NewLocal creates a Local source. A non-positive interval uses
// collectors.DefaultInterval.
func NewLocal(s collectors.Sampler, interval time.Duration, logger *slog.Logger, h Handler) *Local {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Local{sampler: s, interval: interval, handler: h, logger: logger}
}

// Run samples until ctx is done, then reports the stream as disconnected.
// It returns ctx.Err().
func (l *Local) Run(ctx context.Context) error {
	l.handler.OnConnectionStateChange(metrics.StateConnecting)
	l.handler.OnConnectionStateChange(metrics.StateConnected)
	l.handler.OnStreamReset()
	l.logger.Info("sampling locally", "sampler", l.sampler.Name(), "interval", l.interval)

	err := collectors.Run(ctx, l.sampler, l.interval, l.logger, l.handler.OnSnapshot)
	l.logger.Debug("local sampling stopped", "error", err)
	return err
}
