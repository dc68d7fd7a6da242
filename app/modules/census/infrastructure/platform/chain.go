package platform

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// AttemptFailure records one faulted strategy for diagnostics.
type AttemptFailure struct {
	Adapter string
	Err     error
}

// ApplyResult is the overall outcome of driving the chain.
type ApplyResult struct {
	Succeeded   bool
	AdapterUsed string
	Failures    []AttemptFailure
}

// AdapterChain drives the ordered rename strategies until one succeeds.
// Per-strategy faults are caught and recorded, never propagated; the
// chain only reports overall failure once every strategy is unavailable
// or has faulted.
type AdapterChain struct {
	strategies []RenameStrategy
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewAdapterChain builds a chain over the given strategies, defaulting
// to DefaultStrategies. A nil limiter disables rate limiting.
func NewAdapterChain(logger *slog.Logger, limiter *rate.Limiter, strategies ...RenameStrategy) *AdapterChain {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &AdapterChain{
		strategies: strategies,
		limiter:    limiter,
		logger:     logger,
	}
}

// Apply attempts the rename against each strategy in order. The rate
// limiter is consumed once per Apply, bounding rename throughput
// against the platform regardless of which strategy lands.
func (c *AdapterChain) Apply(ctx context.Context, b Binding, guildID, newName string) (ApplyResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ApplyResult{}, fmt.Errorf("rename rate limiter: %w", err)
		}
	}

	result := ApplyResult{}
	for _, strategy := range c.strategies {
		outcome, err := c.attempt(ctx, strategy, b, guildID, newName)
		switch outcome {
		case OutcomeSucceeded:
			result.Succeeded = true
			result.AdapterUsed = strategy.Name()
			return result, nil
		case OutcomeUnavailable:
			continue
		case OutcomeFaulted:
			result.Failures = append(result.Failures, AttemptFailure{Adapter: strategy.Name(), Err: err})
			c.logger.DebugContext(ctx, "rename adapter faulted",
				slog.String("guild_id", guildID),
				slog.String("adapter", strategy.Name()),
				slog.Any("error", err),
			)
		}
	}
	return result, nil
}

// attempt runs one strategy, converting a panic inside the underlying
// capability into a fault so a misbehaving binding cannot end the chain.
func (c *AdapterChain) attempt(ctx context.Context, s RenameStrategy, b Binding, guildID, name string) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeFaulted
			err = fmt.Errorf("panic in adapter %s: %v", s.Name(), r)
		}
	}()
	return s.Attempt(ctx, b, guildID, name)
}
