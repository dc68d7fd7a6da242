package censusrouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/clubkit/census-bot/app/eventbus"
	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	censushandlers "github.com/clubkit/census-bot/app/modules/census/infrastructure/handlers"
	"github.com/clubkit/census-bot/internal/handlerwrapper"
)

// CensusRouter wires the census handlers into the process-wide
// watermill router.
type CensusRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewCensusRouter creates a new CensusRouter.
func NewCensusRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *CensusRouter {
	return &CensusRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up middleware and registers the census handlers.
func (r *CensusRouter) Configure(routerCtx context.Context, handlers censushandlers.Handlers) error {
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler registers a pure transformation-pattern handler with
// a typed payload. The publish topic is empty: produced messages name
// their own topic in metadata and the eventbus routes on it.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "census." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			handler,
		),
	)
}

// RegisterHandlers registers event handlers using the pure
// transformation pattern.
func (r *CensusRouter) RegisterHandlers(ctx context.Context, handlers censushandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, censusevents.MemberJoinedV1, handlers.HandleMemberJoined)
	registerHandler(deps, censusevents.MemberLeftV1, handlers.HandleMemberLeft)
	registerHandler(deps, censusevents.ReconcileRequestedV1, handlers.HandleReconcileRequested)

	return nil
}

// Close stops the router.
func (r *CensusRouter) Close() error {
	return r.Router.Close()
}
