package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func testSummary() Summary {
	return Summary{
		Status:        "healthy (port open, HTTP initializing)",
		StatusCode:    200,
		Phase:         "steady",
		UptimeSeconds: 400,
		Probes: []ProbeSummary{
			{Name: "dashboard_listening", Healthy: true, Gating: true},
			{Name: "dashboard_http", Healthy: false, Gating: true},
			{Name: "manager", Healthy: true},
		},
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func TestMetrics_RecordEvaluation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.RecordEvaluation(context.Background(), testSummary(), 25*time.Millisecond)
	m.RecordEvaluation(context.Background(), testSummary(), 35*time.Millisecond)

	rm := collect(t, reader)

	evals := findMetric(rm, MetricEvaluations)
	if evals == nil {
		t.Fatalf("%s metric not found", MetricEvaluations)
	}
	sum, ok := evals.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", evals.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 2 {
		t.Errorf("evaluations = %+v, want one point with value 2", sum.DataPoints)
	}
	if v, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("health.phase")); !ok || v.AsString() != "steady" {
		t.Errorf("health.phase = %v", v)
	}

	hist := findMetric(rm, MetricDuration)
	if hist == nil {
		t.Fatalf("%s metric not found", MetricDuration)
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	if h.DataPoints[0].Count != 2 {
		t.Errorf("duration count = %d, want 2", h.DataPoints[0].Count)
	}

	uptime := findMetric(rm, MetricUptime)
	if uptime == nil {
		t.Fatalf("%s metric not found", MetricUptime)
	}
	g, ok := uptime.Data.(metricdata.Gauge[int64])
	if !ok {
		t.Fatalf("expected Gauge[int64], got %T", uptime.Data)
	}
	if g.DataPoints[0].Value != 400 {
		t.Errorf("uptime = %d, want 400", g.DataPoints[0].Value)
	}
}

func TestMetrics_ProbeResults(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	m.RecordEvaluation(context.Background(), testSummary(), time.Millisecond)

	found := findMetric(collect(t, reader), MetricProbeResults)
	if found == nil {
		t.Fatalf("%s metric not found", MetricProbeResults)
	}
	sum := found.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 3 {
		t.Fatalf("got %d data points, want one per probe", len(sum.DataPoints))
	}

	gating := 0
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key("probe.gating")); ok && v.AsBool() {
			gating++
		}
	}
	if gating != 2 {
		t.Errorf("gating data points = %d, want 2", gating)
	}
}
