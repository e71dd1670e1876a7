// Package telemetry records service metrics and exports them over OTLP.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"legalflow/internal/config"
)

const (
	serviceName    = "legalflow"
	serviceVersion = "1.0.0"
)

// Recorder receives the events the services report.
type Recorder interface {
	ReconcileStage(ctx context.Context, stage string)
	AnalysisOutcome(ctx context.Context, domainID, outcome string)
	ScoreChanged(ctx context.Context, domainID, cause string, delta int)
	RollupSource(ctx context.Context, domainID, source string)
	Close(ctx context.Context) error
}

// Metrics records events as OpenTelemetry instruments.
type Metrics struct {
	provider      *sdkmetric.MeterProvider
	stages        metric.Int64Counter
	analyses      metric.Int64Counter
	scoreChanges  metric.Int64Counter
	scoreDeltaSum metric.Int64Counter
	rollups       metric.Int64Counter
}

// NewExporter creates a recorder that pushes metrics to the OTLP collector.
func NewExporter(ctx context.Context, cfg config.Telemetry) (*Metrics, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("telemetry is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	return newMetrics(provider)
}

func newMetrics(provider *sdkmetric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(serviceName)

	stages, err := meter.Int64Counter(
		"legalflow_reconcile_stage_total",
		metric.WithDescription("Completions decoded, by the reconciler stage that succeeded"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage counter: %w", err)
	}

	analyses, err := meter.Int64Counter(
		"legalflow_analyses_total",
		metric.WithDescription("Text analyses by outcome"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating analysis counter: %w", err)
	}

	scoreChanges, err := meter.Int64Counter(
		"legalflow_score_changes_total",
		metric.WithDescription("Score mutations by cause"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating score change counter: %w", err)
	}

	scoreDeltaSum, err := meter.Int64Counter(
		"legalflow_score_delta_abs_total",
		metric.WithDescription("Sum of absolute score deltas"),
		metric.WithUnit("{point}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating score delta counter: %w", err)
	}

	rollups, err := meter.Int64Counter(
		"legalflow_rollups_total",
		metric.WithDescription("Final analyses by where they came from"),
		metric.WithUnit("{rollup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rollup counter: %w", err)
	}

	return &Metrics{
		provider:      provider,
		stages:        stages,
		analyses:      analyses,
		scoreChanges:  scoreChanges,
		scoreDeltaSum: scoreDeltaSum,
		rollups:       rollups,
	}, nil
}

func (m *Metrics) ReconcileStage(ctx context.Context, stage string) {
	m.stages.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *Metrics) AnalysisOutcome(ctx context.Context, domainID, outcome string) {
	m.analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("domain", domainID),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) ScoreChanged(ctx context.Context, domainID, cause string, delta int) {
	opt := metric.WithAttributes(
		attribute.String("domain", domainID),
		attribute.String("cause", cause),
	)
	m.scoreChanges.Add(ctx, 1, opt)
	if delta < 0 {
		delta = -delta
	}
	m.scoreDeltaSum.Add(ctx, int64(delta), opt)
}

func (m *Metrics) RollupSource(ctx context.Context, domainID, source string) {
	m.rollups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("domain", domainID),
		attribute.String("source", source),
	))
}

// Close shuts down the provider and flushes any pending metrics.
func (m *Metrics) Close(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// Noop is a recorder that does nothing.
type Noop struct{}

func (Noop) ReconcileStage(context.Context, string) {}
func (Noop) AnalysisOutcome(context.Context, string, string) {}
func (Noop) ScoreChanged(context.Context, string, string, int) {}
func (Noop) RollupSource(context.Context, string, string) {}
func (Noop) Close(context.Context) error { return nil }
