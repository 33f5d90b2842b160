package health

import "errors"

var (
	// ErrProbeTimeout indicates a probe exceeded its timeout and was abandoned.
	ErrProbeTimeout = errors.New("health: probe timeout")

	// ErrProbeSpawn indicates a probe could not be started (bad request,
	// unreadable proc filesystem).
	ErrProbeSpawn = errors.New("health: probe could not start")

	// ErrProbeOutput indicates a probe read output it could not interpret,
	// or panicked while doing so.
	ErrProbeOutput = errors.New("health: unexpected probe output")

	// ErrUptimeRead indicates the process start time could not be read.
	ErrUptimeRead = errors.New("health: uptime unavailable")

	// ErrSerialization indicates a report could not be encoded.
	ErrSerialization = errors.New("health: report serialization failed")

	// ErrMissingProbe indicates a required listen or HTTP probe was nil.
	ErrMissingProbe = errors.New("health: listen and http probes are required")

	// ErrDuplicateProbe indicates two probes share a name.
	ErrDuplicateProbe = errors.New("health: duplicate probe name")
)
