// Package retry decides how long to wait between reconnection attempts.
// A Policy with Multiplier 1 waits a fixed delay; larger multipliers back
// off exponentially up to MaxDelay.
package retry

import (
	"context"
	"fmt"
	"time"
)

// DefaultDelay is the reconnect delay used when none is configured.
const DefaultDelay = 3 * time.Second

// Policy configures the delay between attempts.
type Policy struct {
	// Delay is the wait before the first retry.
	Delay time.Duration
	// MaxDelay caps the backoff. Zero means no cap.
	MaxDelay time.Duration
	// Multiplier grows the delay on each consecutive attempt. Values below 1
	// are treated as 1.
	Multiplier float64
}

// FixedDelay returns a policy that always waits d.
func FixedDelay(d time.Duration) Policy {
	return Policy{Delay: d, MaxDelay: d, Multiplier: 1}
}

// DefaultPolicy waits DefaultDelay between every attempt.
func DefaultPolicy() Policy {
	return FixedDelay(DefaultDelay)
}

// Next returns the wait before retry number attempt (0-based).
func (p Policy) Next(attempt int) time.Duration {
	d := p.Delay
	if d <= 0 {
		d = DefaultDelay
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 0; i < attempt && mult > 1; i++ {
		d = time.Duration(float64(d) * mult)
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Wait blocks for Next(attempt) or until ctx is done, whichever comes first.
func (p Policy) Wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(p.Next(attempt))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Validate reports nonsensical settings.
func (p Policy) Validate() error {
	if p.Delay < 0 {
		return fmt.Errorf("retry: delay must not be negative, got %s", p.Delay)
	}
	if p.MaxDelay > 0 && p.MaxDelay < p.Delay {
		return fmt.Errorf("retry: max delay %s is below delay %s", p.MaxDelay, p.Delay)
	}
	return nil
}

// String describes the policy for logs.
func (p Policy) String() string {
	if p.Multiplier <= 1 {
		return fmt.Sprintf("fixed(%s)", p.Next(0))
	}
	return fmt.Sprintf("backoff(%s x%.1f, max %s)", p.Delay, p.Multiplier, p.MaxDelay)
}
