// Package observe provides observability primitives for health evaluations.
//
// An Observer bundles an OpenTelemetry tracer and meter with a zap-backed
// structured Logger. Middleware wraps one evaluation cycle with a span,
// evaluation metrics and the per-query summary log line.
package observe
