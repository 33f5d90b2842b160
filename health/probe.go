package health

import (
	"context"
	"time"
)

// ProbeResult contains the outcome of a single probe run.
//
// A ProbeResult is produced for every configured probe on every evaluation,
// including probes that timed out, panicked or could not read their source.
type ProbeResult struct {
	// Name is the stable probe name used as the report key.
	Name string

	// Healthy reports whether the dependency was observably healthy.
	Healthy bool

	// Detail is a human-readable description of the outcome.
	Detail string

	// ObservedCode is the HTTP status code seen by an HTTP probe, if any.
	ObservedCode string

	// Duration is how long the probe took.
	Duration time.Duration

	// Err is the failure cause when the probe could not complete its check.
	// It is informational; it never escapes the probe set.
	Err error
}

// Pass creates a healthy result.
func Pass(name, detail string) ProbeResult {
	return ProbeResult{
		Name:    name,
		Healthy: true,
		Detail:  detail,
	}
}

// Fail creates an unhealthy result. err may be nil when the dependency
// simply answered "not ready".
func Fail(name, detail string, err error) ProbeResult {
	return ProbeResult{
		Name:   name,
		Detail: detail,
		Err:    err,
	}
}

// WithObservedCode sets the observed HTTP status code on a result.
func (r ProbeResult) WithObservedCode(code string) ProbeResult {
	r.ObservedCode = code
	return r
}

// WithDuration sets the duration on a result.
func (r ProbeResult) WithDuration(d time.Duration) ProbeResult {
	r.Duration = d
	return r
}

// Probe answers "is dependency X observably healthy right now?".
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Run must honor cancellation/deadlines and return promptly.
//   - Errors: failures are reported through ProbeResult, never by panicking.
type Probe interface {
	// Name returns the stable name of this probe.
	Name() string

	// Run performs the check and returns the result.
	Run(ctx context.Context) ProbeResult
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc struct {
	name string
	fn   func(context.Context) ProbeResult
}

// NewProbeFunc creates a new ProbeFunc.
func NewProbeFunc(name string, fn func(context.Context) ProbeResult) *ProbeFunc {
	return &ProbeFunc{name: name, fn: fn}
}

// Name returns the name of this probe.
func (f *ProbeFunc) Name() string {
	return f.name
}

// Run performs the check.
func (f *ProbeFunc) Run(ctx context.Context) ProbeResult {
	return f.fn(ctx)
}
