package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthgate/resilience"
)

// Default per-probe timeouts.
const (
	DefaultListenTimeout   = 2 * time.Second
	DefaultHTTPTimeout     = 5 * time.Second
	DefaultPresenceTimeout = 2 * time.Second
)

const tracerName = "github.com/jonwraymond/healthgate/health"

// ProbeSetOption configures a ProbeSet.
type ProbeSetOption func(*ProbeSet)

// WithListenTimeout sets the listen probe timeout.
func WithListenTimeout(d time.Duration) ProbeSetOption {
	return func(s *ProbeSet) {
		if d > 0 {
			s.listen.timeout = d
		}
	}
}

// WithHTTPTimeout sets the HTTP probe timeout.
func WithHTTPTimeout(d time.Duration) ProbeSetOption {
	return func(s *ProbeSet) {
		if d > 0 {
			s.http.timeout = d
		}
	}
}

// WithPresence adds an informational presence probe. A non-positive timeout
// uses DefaultPresenceTimeout.
func WithPresence(p Probe, timeout time.Duration) ProbeSetOption {
	return func(s *ProbeSet) {
		if timeout <= 0 {
			timeout = DefaultPresenceTimeout
		}
		s.presence = append(s.presence, boundedProbe{probe: p, timeout: timeout})
	}
}

// WithSequential runs probes one after another instead of in parallel.
func WithSequential() ProbeSetOption {
	return func(s *ProbeSet) {
		s.parallel = false
	}
}

type boundedProbe struct {
	probe   Probe
	timeout time.Duration
}

// ProbeSet is a fixed collection of timeout-bounded probes: one listen probe
// and one HTTP probe that gate the verdict, plus any number of presence
// probes that do not.
type ProbeSet struct {
	listen   boundedProbe
	http     boundedProbe
	presence []boundedProbe
	parallel bool
}

// NewProbeSet creates a probe set. Probe names must be unique.
func NewProbeSet(listen, httpProbe Probe, opts ...ProbeSetOption) (*ProbeSet, error) {
	if listen == nil || httpProbe == nil {
		return nil, ErrMissingProbe
	}

	s := &ProbeSet{
		listen:   boundedProbe{probe: listen, timeout: DefaultListenTimeout},
		http:     boundedProbe{probe: httpProbe, timeout: DefaultHTTPTimeout},
		parallel: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	seen := make(map[string]bool)
	for _, bp := range s.all() {
		if bp.probe == nil {
			return nil, ErrMissingProbe
		}
		name := bp.probe.Name()
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProbe, name)
		}
		seen[name] = true
	}
	return s, nil
}

// Names returns every configured probe name: listen, HTTP, then presence
// probes in registration order.
func (s *ProbeSet) Names() []string {
	all := s.all()
	names := make([]string, len(all))
	for i, bp := range all {
		names[i] = bp.probe.Name()
	}
	return names
}

// Outcomes holds one result per configured probe.
type Outcomes struct {
	Listen   ProbeResult
	HTTP     ProbeResult
	Presence []ProbeResult
}

// All returns every result in the same order as ProbeSet.Names.
func (o Outcomes) All() []ProbeResult {
	all := make([]ProbeResult, 0, 2+len(o.Presence))
	all = append(all, o.Listen, o.HTTP)
	return append(all, o.Presence...)
}

// Run executes every probe and returns their results. Probes never abort
// the cycle: timeouts, errors and panics become unhealthy results.
func (s *ProbeSet) Run(ctx context.Context) Outcomes {
	all := s.all()
	results := make([]ProbeResult, len(all))

	if s.parallel {
		var g errgroup.Group
		for i, bp := range all {
			g.Go(func() error {
				results[i] = runBounded(ctx, bp)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, bp := range all {
			results[i] = runBounded(ctx, bp)
		}
	}

	return Outcomes{
		Listen:   results[0],
		HTTP:     results[1],
		Presence: results[2:],
	}
}

func (s *ProbeSet) all() []boundedProbe {
	all := make([]boundedProbe, 0, 2+len(s.presence))
	all = append(all, s.listen, s.http)
	return append(all, s.presence...)
}

func runBounded(ctx context.Context, bp boundedProbe) ProbeResult {
	name := bp.probe.Name()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "health.probe."+name,
		trace.WithAttributes(attribute.String("probe.name", name)),
	)
	defer span.End()

	start := time.Now()
	resultCh := make(chan ProbeResult, 1)

	err := resilience.ExecuteWithTimeout(ctx, bp.timeout, func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: panic: %v", ErrProbeOutput, r)
			}
		}()
		resultCh <- bp.probe.Run(ctx)
		return nil
	})

	var result ProbeResult
	switch {
	case errors.Is(err, resilience.ErrTimeout):
		result = Fail(name, "timeout", ErrProbeTimeout)
	case err != nil:
		result = Fail(name, err.Error(), err)
	default:
		result = <-resultCh
	}
	result.Name = name
	result = result.WithDuration(time.Since(start))

	span.SetAttributes(attribute.Bool("probe.healthy", result.Healthy))
	if result.Err != nil {
		span.SetStatus(codes.Error, result.Detail)
	}
	return result
}
