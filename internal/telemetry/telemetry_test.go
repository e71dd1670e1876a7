package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"legalflow/internal/config"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Sum[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := newMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	m.ReconcileStage(ctx, "strict")
	m.ReconcileStage(ctx, "strict")
	m.ReconcileStage(ctx, "text_fallback")
	m.ScoreChanged(ctx, "hr_jungle", "answer", -50)
	m.ScoreChanged(ctx, "hr_jungle", "health_impact", 20)
	m.AnalysisOutcome(ctx, "hr_jungle", "ok")
	m.RollupSource(ctx, "hr_jungle", "cache")

	sums := collect(t, reader)

	stages := sums["legalflow_reconcile_stage_total"]
	byStage := map[string]int64{}
	for _, dp := range stages.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("stage"))
		byStage[v.AsString()] = dp.Value
	}
	if byStage["strict"] != 2 || byStage["text_fallback"] != 1 {
		t.Errorf("unexpected stage counts %v", byStage)
	}

	var total int64
	for _, dp := range sums["legalflow_score_delta_abs_total"].DataPoints {
		total += dp.Value
	}
	if total != 70 {
		t.Errorf("expected absolute delta sum 70, got %d", total)
	}

	for _, name := range []string{"legalflow_analyses_total", "legalflow_rollups_total", "legalflow_score_changes_total"} {
		if len(sums[name].DataPoints) == 0 {
			t.Errorf("%s: no data points", name)
		}
	}
	if err := m.Close(ctx); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestNewExporterDisabled(t *testing.T) {
	if _, err := NewExporter(context.Background(), config.Telemetry{}); err == nil {
		t.Fatal("expected error for disabled telemetry")
	}
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.ReconcileStage(context.Background(), "strict")
	if err := r.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
