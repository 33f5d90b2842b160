// Package health decides a single liveness verdict for a host whose
// dependent service starts slower than the orchestrator's grace period.
//
// # Core Concepts
//
// A Probe answers "is dependency X observably healthy right now?" and always
// yields a ProbeResult. Three variants are provided:
//
//   - ListenProbe: is a TCP port in LISTEN state (read from /proc/net/tcp*)
//   - HTTPProbe: does a URL answer with an acceptable status code
//   - PresenceProbe: is a process matching a pattern running (informational)
//
// A ProbeSet runs them, each bounded by its own timeout. Failures of any kind
// become unhealthy results; a probe never aborts an evaluation.
//
// The UptimeTracker reports seconds since the host's top-level process
// started. ClassifyPhase turns that into PhaseStartup or PhaseSteady, and
// Resolve combines the phase with the listen and HTTP results under a
// ResolutionPolicy:
//
//	ready (listen && http)    -> "healthy", 200
//	startup phase             -> "healthy (startup)", 200
//	port open                 -> "healthy (port open, HTTP initializing)", 200
//	otherwise                 -> "unhealthy", 503
//
// # Basic Usage
//
//	listen := health.NewListenProbe("dashboard_listening", 5601, listenCheck)
//	web := health.NewHTTPProbe("dashboard_http", "http://localhost:5601/", nil, nil)
//	set, err := health.NewProbeSet(listen, web,
//	    health.WithPresence(indexerProbe, 2*time.Second),
//	)
//
//	tracker := health.NewUptimeTracker(health.ProcStartTime("/proc", 1))
//	engine := health.NewEngine(tracker, set, health.DefaultPolicy())
//
//	responder := health.NewResponder(engine, middleware, logger)
//	http.ListenAndServe(":8080", responder.Routes())
package health
