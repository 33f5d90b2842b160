package observe

import "time"

// Summary describes one completed evaluation for telemetry purposes.
type Summary struct {
	Status        string
	StatusCode    int
	Phase         string
	UptimeSeconds int
	Note          string
	Probes        []ProbeSummary

	// UptimeError is non-empty when uptime could not be read.
	UptimeError string
}

// ProbeSummary describes one probe outcome.
type ProbeSummary struct {
	Name     string
	Healthy  bool
	Gating   bool
	Detail   string
	Duration time.Duration
}

// Passing reports whether the evaluation resolved to a 2xx status.
func (s Summary) Passing() bool {
	return s.StatusCode >= 200 && s.StatusCode < 300
}
