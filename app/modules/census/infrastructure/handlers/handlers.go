package censushandlers

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	censusservice "github.com/clubkit/census-bot/app/modules/census/application"
	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	"github.com/clubkit/census-bot/internal/handlerwrapper"
	"github.com/clubkit/census-bot/internal/results"
)

// Handlers is the set of typed event handlers the census router wires.
type Handlers interface {
	HandleMemberJoined(ctx context.Context, payload *censusevents.MemberJoinedPayloadV1) ([]handlerwrapper.Result, error)
	HandleMemberLeft(ctx context.Context, payload *censusevents.MemberLeftPayloadV1) ([]handlerwrapper.Result, error)
	HandleReconcileRequested(ctx context.Context, payload *censusevents.ReconcileRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// CensusHandlers implements Handlers on top of the census service.
type CensusHandlers struct {
	service censusservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewCensusHandlers creates a new CensusHandlers.
func NewCensusHandlers(service censusservice.Service, logger *slog.Logger, tracer trace.Tracer) *CensusHandlers {
	return &CensusHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// mapOperationResult converts a service result into outcome events.
// Success payloads pick their topic by type: a run can finish renamed
// or skipped, and both are successes to the service.
func mapOperationResult(result results.OperationResult) []handlerwrapper.Result {
	switch payload := result.Success.(type) {
	case *censusevents.GuildNameReconciledPayloadV1:
		return []handlerwrapper.Result{{Topic: censusevents.GuildNameReconciledV1, Payload: payload}}
	case *censusevents.GuildNameSkippedPayloadV1:
		return []handlerwrapper.Result{{Topic: censusevents.GuildNameSkippedV1, Payload: payload}}
	}
	if result.Failure != nil {
		return []handlerwrapper.Result{{Topic: censusevents.GuildNameReconcileFailedV1, Payload: result.Failure}}
	}
	return nil
}
