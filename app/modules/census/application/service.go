package censusservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
	"github.com/clubkit/census-bot/internal/observability"
	"github.com/clubkit/census-bot/internal/results"
)

// CensusService implements the Service interface: it owns the
// reconciliation pipeline that keeps a watched guild's display name in
// step with its member count.
type CensusService struct {
	watchlist WatchList
	binding   platform.Binding
	chain     *platform.AdapterChain
	fetcher   *MemberCountFetcher
	gate      *MembershipDelayGate
	logger    *slog.Logger
	metrics   observability.CensusMetrics
	tracer    trace.Tracer
	locks     *guildLocks

	// serviceWrapper is swappable so tests can bypass telemetry.
	serviceWrapper func(ctx context.Context, operationName string, guildID string, op operationFunc) (results.OperationResult, error)
}

// operationFunc is the signature for service operation functions.
type operationFunc func(ctx context.Context) (results.OperationResult, error)

// NewCensusService creates a new CensusService.
func NewCensusService(
	watchlist WatchList,
	binding platform.Binding,
	chain *platform.AdapterChain,
	fetcher *MemberCountFetcher,
	gate *MembershipDelayGate,
	logger *slog.Logger,
	metrics observability.CensusMetrics,
	tracer trace.Tracer,
) *CensusService {
	s := &CensusService{
		watchlist: watchlist,
		binding:   binding,
		chain:     chain,
		fetcher:   fetcher,
		gate:      gate,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		locks:     newGuildLocks(),
	}
	s.serviceWrapper = s.withTelemetry
	return s
}

// withTelemetry wraps a service operation with tracing, metrics, and
// panic recovery.
func (s *CensusService) withTelemetry(
	ctx context.Context,
	operationName string,
	guildID string,
	op operationFunc,
) (result results.OperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("guild_id", guildID),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, guildID)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, guildID, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("guild_id", guildID),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, guildID)
			span.RecordError(err)
			result = results.OperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("guild_id", guildID),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, guildID)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.Failure != nil {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			slog.String("operation", operationName),
			slog.String("guild_id", guildID),
			slog.String("failure_type", fmt.Sprintf("%T", result.Failure)),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, guildID)
	return result, nil
}

// guildLocks serializes reconciliation runs per guild so concurrent
// triggers for one guild cannot interleave rename calls. Runs for
// different guilds never contend. Entries are never removed; the map is
// bounded by the number of watched guilds.
type guildLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGuildLocks() *guildLocks {
	return &guildLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the guild's mutex and returns the unlock function.
func (g *guildLocks) acquire(guildID string) func() {
	g.mu.Lock()
	lock, ok := g.locks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[guildID] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
