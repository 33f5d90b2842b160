package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthgate/observe"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 5 * time.Second

type boundServer struct {
	name     string
	listener net.Listener
	srv      *http.Server
}

// Group serves every bound listener. Listeners are independent; a request on
// one never waits on another.
type Group struct {
	servers         []boundServer
	logger          observe.Logger
	shutdownTimeout time.Duration
}

// NewGroup creates a group from the bound results of Bind. Unbound results
// are ignored.
func NewGroup(results []AttemptResult, logger observe.Logger, shutdownTimeout time.Duration) *Group {
	if logger == nil {
		logger = observe.NopLogger()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}

	g := &Group{logger: logger, shutdownTimeout: shutdownTimeout}
	for _, r := range results {
		if !r.Bound() {
			continue
		}
		g.servers = append(g.servers, boundServer{
			name:     r.Attempt.Name,
			listener: r.Listener,
			srv: &http.Server{
				Handler:           r.Attempt.Handler,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			},
		})
	}
	return g
}

// Len returns the number of listeners served.
func (g *Group) Len() int {
	return len(g.servers)
}

// Serve blocks until ctx is cancelled or a listener fails, then shuts every
// server down gracefully. It returns nil after a clean shutdown.
func (g *Group) Serve(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)

	for _, s := range g.servers {
		eg.Go(func() error {
			g.logger.Info(ctx, "listener serving",
				observe.Field{Key: "listener", Value: s.name},
				observe.Field{Key: "address", Value: s.listener.Addr().String()},
			)
			if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.name, err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()
		return g.shutdown(context.WithoutCancel(ctx))
	})

	return eg.Wait()
}

func (g *Group) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, s := range g.servers {
		if err := s.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", s.name, err))
		}
	}
	g.logger.Info(ctx, "listeners stopped", observe.Field{Key: "count", Value: len(g.servers)})
	return errors.Join(errs...)
}
