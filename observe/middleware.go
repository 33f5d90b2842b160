package observe

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EvaluateFunc runs one evaluation cycle and summarizes it.
type EvaluateFunc func(ctx context.Context) (Summary, error)

// Middleware wraps evaluation cycles with tracing, metrics and the summary
// log line.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe EvaluateFunc.
//   - Context: Propagates context through the evaluation span.
//   - Errors: Errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components are replaced with
// no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Wrap wraps fn with telemetry.
func (m *Middleware) Wrap(fn EvaluateFunc) EvaluateFunc {
	return func(ctx context.Context) (Summary, error) {
		id := uuid.NewString()
		ctx, span := m.tracer.StartSpan(ctx, id)

		start := time.Now()
		summary, err := fn(ctx)
		duration := time.Since(start)

		m.tracer.EndSpan(span, summary, err)
		m.metrics.RecordEvaluation(ctx, summary, duration)

		fields := make([]Field, 0, 8+len(summary.Probes))
		fields = append(fields,
			Field{Key: "evaluation_id", Value: id},
			Field{Key: "uptime_seconds", Value: summary.UptimeSeconds},
			Field{Key: "phase", Value: summary.Phase},
			Field{Key: "status", Value: summary.Status},
			Field{Key: "status_code", Value: summary.StatusCode},
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		)
		for _, p := range summary.Probes {
			fields = append(fields, Field{Key: "probe." + p.Name, Value: p.Healthy})
		}
		if summary.UptimeError != "" {
			fields = append(fields, Field{Key: "uptime_error", Value: summary.UptimeError})
		}

		switch {
		case err != nil:
			fields = append(fields, Field{Key: "error", Value: err})
			m.logger.Error(ctx, "health evaluation failed", fields...)
		case !summary.Passing():
			m.logger.Warn(ctx, "health evaluation", fields...)
		default:
			m.logger.Info(ctx, "health evaluation", fields...)
		}

		return summary, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
