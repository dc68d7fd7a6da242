package census

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/time/rate"

	"github.com/clubkit/census-bot/app/eventbus"
	censusservice "github.com/clubkit/census-bot/app/modules/census/application"
	censushandlers "github.com/clubkit/census-bot/app/modules/census/infrastructure/handlers"
	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
	censusrouter "github.com/clubkit/census-bot/app/modules/census/infrastructure/router"
	"github.com/clubkit/census-bot/config"
	"github.com/clubkit/census-bot/internal/observability"
)

// Module represents the census module.
type Module struct {
	EventBus      eventbus.EventBus
	CensusService censusservice.Service
	CensusRouter  *censusrouter.CensusRouter
	config        *config.Config
	observability *observability.Observability
	cancelFunc    context.CancelFunc
}

// NewCensusModule creates a new instance of the census module.
func NewCensusModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	watchlist censusservice.WatchList,
	binding platform.Binding,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "census.NewCensusModule called")

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.Census.RenamePerMinute)), 1)
	chain := platform.NewAdapterChain(logger, limiter)
	fetcher := censusservice.NewMemberCountFetcher(binding, logger)
	gate := censusservice.NewMembershipDelayGate(time.Duration(cfg.Census.UpdateDelayMs) * time.Millisecond)

	service := censusservice.NewCensusService(
		watchlist,
		binding,
		chain,
		fetcher,
		gate,
		logger,
		obs.Metrics,
		obs.Tracer,
	)

	censusRouter := censusrouter.NewCensusRouter(logger, router, eventBus, eventBus, obs.Tracer)
	handlers := censushandlers.NewCensusHandlers(service, logger, obs.Tracer)
	if err := censusRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure census router: %w", err)
	}

	return &Module{
		EventBus:      eventBus,
		CensusService: service,
		CensusRouter:  censusRouter,
		config:        cfg,
		observability: obs,
	}, nil
}

// Run keeps the module alive until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting census module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Census module goroutine stopped")
}

// Close stops the census module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping census module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.CensusRouter != nil {
		if err := m.CensusRouter.Close(); err != nil {
			logger.Error("Error closing CensusRouter from module", "error", err)
			return fmt.Errorf("error closing CensusRouter: %w", err)
		}
	}

	logger.Info("Census module stopped")
	return nil
}
