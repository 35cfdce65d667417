package collectors

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

func TestRun_EmitsUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	s := SamplerFunc(func(ctx context.Context) (metrics.Snapshot, error) {
		n := calls.Add(1)
		return metrics.Snapshot{CPUPercent: float64(n)}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var got []float64
	err := Run(ctx, s, time.Millisecond, nil, func(snap metrics.Snapshot) {
		got = append(got, snap.CPUPercent)
		if len(got) == 3 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("expected samples 1..3 in order, got %v", got)
	}
}

func TestRun_SkipsFailedSamples(t *testing.T) {
	var calls atomic.Int32
	s := SamplerFunc(func(ctx context.Context) (metrics.Snapshot, error) {
		if calls.Add(1) == 1 {
			return metrics.Snapshot{}, errors.New("sensor offline")
		}
		return metrics.Snapshot{CPUPercent: 5}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var emitted int
	_ = Run(ctx, s, time.Millisecond, nil, func(metrics.Snapshot) {
		emitted++
		cancel()
	})

	if calls.Load() < 2 {
		t.Errorf("expected a retry after the failure, got %d calls", calls.Load())
	}
	if emitted != 1 {
		t.Errorf("expected exactly one emitted snapshot, got %d", emitted)
	}
}

func TestRun_ImmediateCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := SamplerFunc(func(ctx context.Context) (metrics.Snapshot, error) {
		return metrics.Snapshot{}, ctx.Err()
	})
	if err := Run(ctx, s, time.Hour, nil, func(metrics.Snapshot) {}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
