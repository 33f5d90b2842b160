package health

import (
	"context"
	"time"
)

// Engine runs one evaluation cycle: uptime, probes, resolution, report.
// It holds no state that changes between evaluations.
type Engine struct {
	tracker *UptimeTracker
	probes  *ProbeSet
	policy  ResolutionPolicy
	now     func() time.Time
}

// NewEngine creates an evaluation engine.
func NewEngine(tracker *UptimeTracker, probes *ProbeSet, policy ResolutionPolicy) *Engine {
	return &Engine{
		tracker: tracker,
		probes:  probes,
		policy:  policy,
		now:     time.Now,
	}
}

// Evaluation is the full outcome of one cycle.
type Evaluation struct {
	Report   HealthReport
	Phase    Phase
	Verdict  Verdict
	Outcomes Outcomes

	// UptimeErr is set when uptime could not be read and defaulted to zero.
	UptimeErr error
}

// Evaluate runs one cycle.
func (e *Engine) Evaluate(ctx context.Context) Evaluation {
	uptime, uptimeErr := e.tracker.Uptime()
	phase := ClassifyPhase(uptime, e.policy.StartupWindowSeconds)

	outcomes := e.probes.Run(ctx)
	verdict := Resolve(phase, outcomes.Listen, outcomes.HTTP, e.policy)

	return Evaluation{
		Report:    NewHealthReport(e.now(), uptime, phase, verdict, outcomes.All()),
		Phase:     phase,
		Verdict:   verdict,
		Outcomes:  outcomes,
		UptimeErr: uptimeErr,
	}
}
