package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout applies when TimeoutConfig.Timeout is not positive.
const DefaultTimeout = 5 * time.Second

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: 5 seconds
	Timeout time.Duration
}

// Timeout abandons operations that outlive their budget.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Timeout{config: config}
}

// Execute runs op with a deadline. It returns op's error, an error wrapping
// ErrTimeout when the deadline passes first, or the parent context's error
// when the parent is cancelled.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	// Buffered so an abandoned op can still complete its send.
	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		// An op that gave up on its own deadline still timed out.
		if errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return t.timeoutError()
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return t.timeoutError()
		}
		return ctx.Err()
	}
}

func (t *Timeout) timeoutError() error {
	return fmt.Errorf("%w after %s", ErrTimeout, t.config.Timeout)
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout runs op with the given timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
