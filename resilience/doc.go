// Package resilience bounds blocking operations in time.
//
// Timeout runs an operation on its own goroutine and abandons it once the
// deadline passes, so a hung dependency check cannot hold up its caller for
// longer than its own budget:
//
//	err := resilience.ExecuteWithTimeout(ctx, 2*time.Second, func(ctx context.Context) error {
//	    return check(ctx)
//	})
//	if errors.Is(err, resilience.ErrTimeout) {
//	    // the operation was abandoned
//	}
//
// The operation receives a context carrying the deadline and should return
// once it is done; an operation that ignores it keeps running in the
// background until it finishes on its own.
package resilience
