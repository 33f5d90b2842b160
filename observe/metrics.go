package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricEvaluations  = "health.evaluations"
	MetricProbeResults = "health.probe.results"
	MetricDuration     = "health.evaluation.duration_ms"
	MetricUptime       = "health.uptime_seconds"
)

// Metrics records evaluation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordEvaluation records one completed evaluation.
	RecordEvaluation(ctx context.Context, summary Summary, duration time.Duration)
}

type metricsImpl struct {
	evaluations  metric.Int64Counter
	probeResults metric.Int64Counter
	durationHist metric.Float64Histogram
	uptime       metric.Int64Gauge
}

// NewMetrics creates evaluation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	evaluations, err := meter.Int64Counter(
		MetricEvaluations,
		metric.WithDescription("Health evaluations by resolved status"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	probeResults, err := meter.Int64Counter(
		MetricProbeResults,
		metric.WithDescription("Probe outcomes by probe and health"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Evaluation cycle duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Int64Gauge(
		MetricUptime,
		metric.WithDescription("Host uptime seen by the last evaluation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		evaluations:  evaluations,
		probeResults: probeResults,
		durationHist: durationHist,
		uptime:       uptime,
	}, nil
}

func (m *metricsImpl) RecordEvaluation(ctx context.Context, summary Summary, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("health.status", summary.Status),
		attribute.Int("http.status_code", summary.StatusCode),
		attribute.String("health.phase", summary.Phase),
	)

	m.evaluations.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
	m.uptime.Record(ctx, int64(summary.UptimeSeconds))

	for _, p := range summary.Probes {
		m.probeResults.Add(ctx, 1, metric.WithAttributes(
			attribute.String("probe.name", p.Name),
			attribute.Bool("probe.healthy", p.Healthy),
			attribute.Bool("probe.gating", p.Gating),
		))
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordEvaluation(context.Context, Summary, time.Duration) {}
