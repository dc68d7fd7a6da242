package observability

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects the observability surfaces for a process.
type Config struct {
	ServiceName    string
	Environment    string
	MetricsAddress string // empty disables the scrape endpoint
}

// Observability bundles the logger, tracer and metrics handed to every
// module, so constructors take one dependency instead of three.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  CensusMetrics

	metricsServer *http.Server
}

// New builds the default bundle: JSON slog to stdout, a noop tracer
// (swappable by the host when an OTLP exporter is configured), and a
// dedicated prometheus registry with the census metrics registered.
func New(cfg Config) *Observability {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)

	return &Observability{
		Logger:   logger,
		Tracer:   noop.NewTracerProvider().Tracer(cfg.ServiceName),
		Registry: registry,
		Metrics:  metrics,
	}
}

// StartMetricsServer serves the prometheus scrape endpoint. A no-op
// when no address is configured.
func (o *Observability) StartMetricsServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{}))
	o.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := o.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			o.Logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
}

// Shutdown stops the metrics server if one is running.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.metricsServer == nil {
		return nil
	}
	return o.metricsServer.Shutdown(ctx)
}
