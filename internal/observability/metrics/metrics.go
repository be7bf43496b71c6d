package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments for the snapshot engine.
type Metrics struct {
	snapshotRequests metric.Int64Counter
	providerFailures metric.Int64Counter
	localDegraded    metric.Int64Counter
	compileDuration  metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "revlens"
	}
	meter := provider.Meter(name)

	snapshotRequests, err := meter.Int64Counter("revlens_snapshot_requests_total")
	if err != nil {
		return nil, err
	}
	providerFailures, err := meter.Int64Counter("revlens_provider_fetch_failures_total")
	if err != nil {
		return nil, err
	}
	localDegraded, err := meter.Int64Counter("revlens_local_degraded_queries_total")
	if err != nil {
		return nil, err
	}
	compileDuration, err := meter.Float64Histogram("revlens_snapshot_compile_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		snapshotRequests: snapshotRequests,
		providerFailures: providerFailures,
		localDegraded:    localDegraded,
		compileDuration:  compileDuration,
	}, nil
}

// RecordSnapshotRequest counts snapshot requests per source and period.
func (m *Metrics) RecordSnapshotRequest(ctx context.Context, source, period string) {
	if m == nil {
		return
	}
	m.snapshotRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", strings.TrimSpace(source)),
		attribute.String("period", strings.TrimSpace(period)),
	))
}

// RecordProviderFailure counts failed provider sub-queries.
func (m *Metrics) RecordProviderFailure(ctx context.Context, call string) {
	if m == nil {
		return
	}
	m.providerFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("call", strings.TrimSpace(call)),
	))
}

// RecordLocalDegradation counts local sub-queries that fell back to zero values.
func (m *Metrics) RecordLocalDegradation(ctx context.Context, query string) {
	if m == nil {
		return
	}
	m.localDegraded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("query", strings.TrimSpace(query)),
	))
}

// RecordCompileDuration observes how long a snapshot compilation took.
func (m *Metrics) RecordCompileDuration(ctx context.Context, source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.compileDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("source", strings.TrimSpace(source)),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}
