// Package guardrails holds cross cutting safety helpers for the report worker
package guardrails

import (
	"context"
	"time"
)

// Timeouts bounds a single report run. Soft expires the job cooperatively
// (stores still being processed are allowed to finish their current
// store); Hard is the absolute ceiling enforced via context deadline.
type Timeouts struct {
	Soft time.Duration
	Hard time.Duration
}

// DefaultTimeouts matches the 25-minute soft / 30-minute hard budget
func DefaultTimeouts() Timeouts {
	return Timeouts{Soft: 25 * time.Minute, Hard: 30 * time.Minute}
}

// WithHard returns a context bounded by t.Hard, never extending any
// parent deadline.
func WithHard(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	if t.Hard <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < t.Hard {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, t.Hard)
}

// SoftExpired reports whether started is older than t.Soft
func SoftExpired(started time.Time, t Timeouts) bool {
	if t.Soft <= 0 {
		return false
	}
	return time.Since(started) >= t.Soft
}

// Remaining returns the time until ctx's deadline, or zero when none is
// set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}
