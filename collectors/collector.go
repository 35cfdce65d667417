// Package collectors defines the sampler interface behind every snapshot
// source and the loop that polls a sampler on a fixed interval.
package collectors

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

// DefaultInterval is the reporting interval of a snapshot stream.
const DefaultInterval = time.Second

// Sampler produces one snapshot per call.
type Sampler interface {
	// Name identifies the sampler in logs.
	Name() string

	// Sample gathers current values. Non-fatal gaps (a missing sensor) are
	// reported as zero fields, not errors. The context bounds slow reads.
	Sample(ctx context.Context) (metrics.Snapshot, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context) (metrics.Snapshot, error)

// Name returns "func".
func (f SamplerFunc) Name() string { return "func" }

// Sample calls f.
func (f SamplerFunc) Sample(ctx context.Context) (metrics.Snapshot, error) { return f(ctx) }

// Run samples s immediately and then every interval, passing each snapshot
// to emit. Failed samples are logged and skipped. Run returns ctx.Err()
// when ctx is done.
func Run(ctx context.Context, s Sampler, interval time.Duration, logger *slog.Logger, emit func(metrics.Snapshot)) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap, err := s.Sample(ctx)
		switch {
		case err == nil:
			emit(snap)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("sample timed out", "sampler", s.Name(), "error", err)
		default:
			logger.Warn("sample failed", "sampler", s.Name(), "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
