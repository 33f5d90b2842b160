package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
)

// Attempt is one entry in an ordered bind list.
type Attempt struct {
	// Name identifies the listener in logs ("primary", "fallback", "metrics").
	Name string

	// Address is the host:port to listen on.
	Address string

	// Required makes a failure of this attempt fatal to Bind.
	Required bool

	// Handler serves requests accepted on this listener.
	Handler http.Handler
}

// AttemptResult is the outcome of one Attempt. Exactly one of Listener and
// Err is set.
type AttemptResult struct {
	Attempt  Attempt
	Listener net.Listener
	Err      error
}

// Bound reports whether the attempt produced a listener.
func (r AttemptResult) Bound() bool {
	return r.Listener != nil
}

// ListenFunc opens a listener. (*net.ListenConfig).Listen satisfies it.
type ListenFunc func(ctx context.Context, network, address string) (net.Listener, error)

// Bind tries every attempt in order. A nil listen uses a zero
// net.ListenConfig.
//
// The returned results always cover every attempt tried. On a required
// failure, listeners bound so far are closed and the error wraps
// ErrRequiredBind.
func Bind(ctx context.Context, listen ListenFunc, attempts []Attempt) ([]AttemptResult, error) {
	if len(attempts) == 0 {
		return nil, ErrNoAttempts
	}
	if listen == nil {
		var lc net.ListenConfig
		listen = lc.Listen
	}

	results := make([]AttemptResult, 0, len(attempts))
	for _, a := range attempts {
		ln, err := listen(ctx, "tcp", a.Address)
		if err != nil {
			err = fmt.Errorf("%w: %s on %s: %v", ErrBind, a.Name, a.Address, err)
			results = append(results, AttemptResult{Attempt: a, Err: err})
			if a.Required {
				closeBound(results)
				return results, fmt.Errorf("%w: %v", ErrRequiredBind, err)
			}
			continue
		}
		results = append(results, AttemptResult{Attempt: a, Listener: ln})
	}
	return results, nil
}

// Failed returns the results whose attempt did not bind.
func Failed(results []AttemptResult) []AttemptResult {
	var failed []AttemptResult
	for _, r := range results {
		if !r.Bound() {
			failed = append(failed, r)
		}
	}
	return failed
}

func closeBound(results []AttemptResult) {
	for i := range results {
		if results[i].Listener != nil {
			_ = results[i].Listener.Close()
			results[i].Listener = nil
		}
	}
}
