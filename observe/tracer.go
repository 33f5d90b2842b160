package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SpanEvaluate is the name of the span covering one evaluation cycle.
const SpanEvaluate = "health.evaluate"

// Tracer wraps OpenTelemetry tracing around evaluation cycles.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts the span for one evaluation.
	StartSpan(ctx context.Context, evaluationID string) (context.Context, trace.Span)

	// EndSpan annotates the span with the outcome and ends it.
	EndSpan(span trace.Span, summary Summary, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, evaluationID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanEvaluate,
		trace.WithAttributes(attribute.String("health.evaluation_id", evaluationID)),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, summary Summary, err error) {
	span.SetAttributes(
		attribute.String("health.status", summary.Status),
		attribute.Int("http.status_code", summary.StatusCode),
		attribute.String("health.phase", summary.Phase),
		attribute.Int("health.uptime_seconds", summary.UptimeSeconds),
	)

	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	case !summary.Passing():
		span.SetStatus(codes.Error, summary.Status)
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, SpanEvaluate)
}

func (t *noopTracer) EndSpan(span trace.Span, _ Summary, _ error) {
	span.End()
}
