package health

import (
	"net/http"
	"slices"
)

// Phase classifies the host's lifecycle relative to the startup window.
type Phase int

const (
	// PhaseStartup is the window after launch during which an unready
	// dependency is tolerated.
	PhaseStartup Phase = iota
	// PhaseSteady is everything after the startup window.
	PhaseSteady
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStartup:
		return "startup"
	case PhaseSteady:
		return "steady"
	default:
		return "unknown"
	}
}

// ClassifyPhase returns PhaseStartup while uptimeSeconds is below
// windowSeconds.
func ClassifyPhase(uptimeSeconds, windowSeconds int) Phase {
	if uptimeSeconds < windowSeconds {
		return PhaseStartup
	}
	return PhaseSteady
}

// Overall status labels.
const (
	StatusHealthy   = "healthy"
	StatusStartup   = "healthy (startup)"
	StatusPortOpen  = "healthy (port open, HTTP initializing)"
	StatusUnhealthy = "unhealthy"
)

// Report notes.
const (
	NoteStartup  = "Health check passing during startup phase - dependency may still be initializing"
	NoteNotReady = "Dependency not ready after startup phase"
)

// DefaultStartupWindowSeconds is the default startup window. Deployments
// have used both 300 and 600; it is environment-tunable.
const DefaultStartupWindowSeconds = 300

// ResolutionPolicy configures the precedence between readiness, the startup
// window and the port-open grace period.
type ResolutionPolicy struct {
	// StartupWindowSeconds bounds the startup phase.
	// Default: 300
	StartupWindowSeconds int

	// ReadinessOverridesStartup lets a fully ready dependency report plain
	// "healthy" during the startup window.
	// Default: true
	ReadinessOverridesStartup bool

	// DegradedPortOpenPasses lets a listening but not yet HTTP-responsive
	// dependency pass after the startup window.
	// Default: true
	DegradedPortOpenPasses bool

	// AcceptableHTTPCodes are the status codes the HTTP probe treats as healthy.
	// Default: DefaultAcceptableCodes
	AcceptableHTTPCodes []int
}

// DefaultPolicy returns the documented default policy.
func DefaultPolicy() ResolutionPolicy {
	return ResolutionPolicy{
		StartupWindowSeconds:      DefaultStartupWindowSeconds,
		ReadinessOverridesStartup: true,
		DegradedPortOpenPasses:    true,
		AcceptableHTTPCodes:       slices.Clone(DefaultAcceptableCodes),
	}
}

// Verdict is the resolved overall status.
type Verdict struct {
	Status     string
	StatusCode int
	Note       string
}

// Passing reports whether the verdict is a 200.
func (v Verdict) Passing() bool {
	return v.StatusCode == http.StatusOK
}

// Resolve combines the phase with the listen and HTTP probe results.
// Rules short-circuit in order:
//
//  1. ready (listen and HTTP healthy) -> healthy, in any phase
//  2. startup phase -> healthy (startup)
//  3. port open -> healthy (port open, HTTP initializing)
//  4. otherwise -> unhealthy, 503
//
// With ReadinessOverridesStartup disabled, rule 2 is checked before rule 1.
// With DegradedPortOpenPasses disabled, rule 3 is skipped.
func Resolve(phase Phase, listen, httpResult ProbeResult, policy ResolutionPolicy) Verdict {
	ready := listen.Healthy && httpResult.Healthy

	if ready && policy.ReadinessOverridesStartup {
		return Verdict{Status: StatusHealthy, StatusCode: http.StatusOK}
	}
	if phase == PhaseStartup {
		return Verdict{Status: StatusStartup, StatusCode: http.StatusOK, Note: NoteStartup}
	}
	if ready {
		return Verdict{Status: StatusHealthy, StatusCode: http.StatusOK}
	}
	if listen.Healthy && policy.DegradedPortOpenPasses {
		return Verdict{Status: StatusPortOpen, StatusCode: http.StatusOK}
	}
	return Verdict{Status: StatusUnhealthy, StatusCode: http.StatusServiceUnavailable, Note: NoteNotReady}
}
