package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
)

// DefaultAcceptableCodes are the status codes that mean "the service is up and
// speaking HTTP". Redirects and auth challenges count.
var DefaultAcceptableCodes = []int{
	http.StatusOK,
	http.StatusMovedPermanently,
	http.StatusFound,
	http.StatusSeeOther,
	http.StatusTemporaryRedirect,
	http.StatusPermanentRedirect,
	http.StatusUnauthorized,
}

// HeaderProbe marks requests sent by an HTTPProbe. A Responder answers them
// with a 404 so a probe pointed back at healthgate sees no dependency.
const HeaderProbe = "X-Healthgate-Probe"

// HTTPDoer issues a single HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client that reports redirects instead of following
// them. Timeouts come from the request context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// HTTPProbe checks that a URL answers with an acceptable status code.
type HTTPProbe struct {
	name       string
	url        string
	acceptable []int
	client     HTTPDoer
}

// NewHTTPProbe creates an HTTP probe. A nil client uses NewHTTPClient and an
// empty acceptable list uses DefaultAcceptableCodes.
func NewHTTPProbe(name, url string, acceptable []int, client HTTPDoer) *HTTPProbe {
	if client == nil {
		client = NewHTTPClient()
	}
	if len(acceptable) == 0 {
		acceptable = DefaultAcceptableCodes
	}
	return &HTTPProbe{
		name:       name,
		url:        url,
		acceptable: slices.Clone(acceptable),
		client:     client,
	}
}

// Name returns the name of this probe.
func (p *HTTPProbe) Name() string {
	return p.name
}

// Acceptable reports whether code counts as healthy.
func (p *HTTPProbe) Acceptable(code int) bool {
	return slices.Contains(p.acceptable, code)
}

// Run issues exactly one GET request.
func (p *HTTPProbe) Run(ctx context.Context) ProbeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Fail(p.name, fmt.Sprintf("Error building request: %v", err), fmt.Errorf("%w: %v", ErrProbeSpawn, err))
	}
	req.Header.Set(HeaderProbe, "1")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Fail(p.name, "timeout", ErrProbeTimeout)
		}
		return Fail(p.name, fmt.Sprintf("%s not responding: %v", p.name, err), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	code := strconv.Itoa(resp.StatusCode)
	if !p.Acceptable(resp.StatusCode) {
		return Fail(p.name, fmt.Sprintf("%s not responding: %s", p.name, code), nil).WithObservedCode(code)
	}
	return Pass(p.name, fmt.Sprintf("%s HTTP: %s", p.name, code)).WithObservedCode(code)
}
