package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// InitMetrics sets up the global meter provider with a Prometheus exporter.
// The exporter registers with the default Prometheus registry, so the
// playground's /metrics endpoint serves these instruments.
func InitMetrics(serviceName string) (*sdkmetric.MeterProvider, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)
	return provider, nil
}

// PipelineMetrics bundles the instruments the generator records.
type PipelineMetrics struct {
	runs          metric.Int64Counter
	cacheHits     metric.Int64Counter
	stageDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on the global meter.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter("blogsmith/workflow")

	runs, err := meter.Int64Counter(
		"blogsmith_runs_total",
		metric.WithDescription("Pipeline runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"blogsmith_cache_hits_total",
		metric.WithDescription("Runs served from the post cache"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"blogsmith_stage_duration_seconds",
		metric.WithDescription("Per-stage execution time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		runs:          runs,
		cacheHits:     cacheHits,
		stageDuration: stageDuration,
	}, nil
}

// RecordRun counts one finished run with its outcome ("ok" or "error").
func (m *PipelineMetrics) RecordRun(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCacheHit counts one run served from cache.
func (m *PipelineMetrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1)
}

// RecordStage records one stage execution.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}
