package config

import (
	"fmt"
	"regexp"

	"github.com/jonwraymond/healthgate/health"
)

// ProbeSet builds the listen, HTTP and presence probes against the host's
// proc filesystem.
func (c *Config) ProbeSet() (*health.ProbeSet, error) {
	listenCheck, err := health.NewProcNetListenCheck(c.Host.ProcRoot)
	if err != nil {
		return nil, err
	}

	var processCheck health.ProcessCheck
	if len(c.Presence) > 0 {
		pc, err := health.NewProcfsProcessCheck(c.Host.ProcRoot)
		if err != nil {
			return nil, err
		}
		processCheck = pc
	}

	return c.probeSet(listenCheck, processCheck, nil)
}

// probeSet wires probes from explicit capabilities.
func (c *Config) probeSet(listen health.ListenCheck, process health.ProcessCheck, client health.HTTPDoer) (*health.ProbeSet, error) {
	dep := c.Dependency

	opts := []health.ProbeSetOption{
		health.WithListenTimeout(dep.ListenTimeout),
		health.WithHTTPTimeout(dep.HTTPTimeout),
	}
	if !c.Probes.Parallel {
		opts = append(opts, health.WithSequential())
	}

	for _, p := range c.Presence {
		pattern, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("presence %q: %w", p.Name, err)
		}
		opts = append(opts, health.WithPresence(health.NewPresenceProbe(p.Name, pattern, process), p.Timeout))
	}

	return health.NewProbeSet(
		health.NewListenProbe(dep.ListenName, dep.Port, listen),
		health.NewHTTPProbe(dep.HTTPName, dep.URL, c.Policy.AcceptableHTTPCodes, client),
		opts...,
	)
}

// Engine builds the evaluation engine for this configuration.
func (c *Config) Engine() (*health.Engine, error) {
	probes, err := c.ProbeSet()
	if err != nil {
		return nil, err
	}
	tracker := health.NewUptimeTracker(health.ProcStartTime(c.Host.ProcRoot, c.Host.PID))
	return health.NewEngine(tracker, probes, c.ResolutionPolicy()), nil
}
