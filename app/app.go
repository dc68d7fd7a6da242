package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/clubkit/census-bot/app/eventbus"
	"github.com/clubkit/census-bot/app/modules/census"
	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
	"github.com/clubkit/census-bot/config"
	"github.com/clubkit/census-bot/internal/observability"
)

// App wires configuration, observability, the event bus and the census
// module into one runnable process.
type App struct {
	Cfg           *config.Config
	Observability *observability.Observability
	WatchList     *config.WatchListStore
	EventBus      eventbus.EventBus
	Router        *message.Router
	CensusModule  *census.Module

	natsConn *nc.Conn
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	obs := observability.New(config.ToObsConfig(cfg))
	logger := obs.Logger

	watchlist, err := config.LoadWatchList(cfg.Census.WatchListPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch list: %w", err)
	}
	if err := watchlist.Watch(ctx); err != nil {
		return nil, fmt.Errorf("failed to watch watch list: %w", err)
	}

	bus, err := eventbus.NewNATSEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	// Dedicated connection for gateway request/reply, separate from the
	// watermill-owned connections.
	conn, err := nc.Connect(cfg.NATS.URL, nc.Name("census-bot"), nc.RetryOnFailedConnect(true))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	binding := platform.NewNATSBinding(conn, platform.WithSubjectPrefix(cfg.Census.GatewayPrefix))

	if err := eventbus.InitializeStreams(ctx, conn, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	censusModule, err := census.NewCensusModule(ctx, cfg, obs, watchlist, binding, bus, router, ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize census module: %w", err)
	}

	obs.StartMetricsServer(cfg.Observability.MetricsAddress)

	return &App{
		Cfg:           cfg,
		Observability: obs,
		WatchList:     watchlist,
		EventBus:      bus,
		Router:        router,
		CensusModule:  censusModule,
		natsConn:      conn,
	}, nil
}

// Run starts the watermill router and the census module, blocking until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go a.CensusModule.Run(ctx, &wg)

	err := a.Router.Run(ctx)
	wg.Wait()
	return err
}

// Close releases all resources.
func (a *App) Close() error {
	if err := a.CensusModule.Close(); err != nil {
		a.Observability.Logger.Error("Error closing census module", "error", err)
	}
	if err := a.EventBus.Close(); err != nil {
		a.Observability.Logger.Error("Error closing event bus", "error", err)
	}
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	return a.Observability.Shutdown(context.Background())
}
