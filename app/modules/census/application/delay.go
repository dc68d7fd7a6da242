package censusservice

import (
	"context"
	"time"
)

// Bounds for the settle delay. Membership events can arrive before the
// platform's member index reflects the change; the gate is a
// best-effort mitigation, not a guarantee.
const (
	minSettleDelay = 500 * time.Millisecond
	maxSettleDelay = 10 * time.Second
)

// MembershipDelayGate suspends a run once, before the first member
// count fetch, to let the platform's member index settle.
type MembershipDelayGate struct {
	delay time.Duration
}

// NewMembershipDelayGate clamps the configured delay into
// [minSettleDelay, maxSettleDelay].
func NewMembershipDelayGate(configured time.Duration) *MembershipDelayGate {
	if configured < minSettleDelay {
		configured = minSettleDelay
	}
	if configured > maxSettleDelay {
		configured = maxSettleDelay
	}
	return &MembershipDelayGate{delay: configured}
}

// Delay returns the effective settle delay.
func (g *MembershipDelayGate) Delay() time.Duration {
	return g.delay
}

// Wait blocks for the settle delay or until the context is done.
func (g *MembershipDelayGate) Wait(ctx context.Context) error {
	return sleepContext(ctx, g.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
