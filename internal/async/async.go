// Package async implements the concurrency-composition operations spec
// §4.12 names (timeout, retry, parallel, race) plus the bounded worker pool
// backing Parallel, grounded on cmd/ailang/eval_suite.go's semaphore +
// sync.WaitGroup pattern in the teacher repo, generalized with
// golang.org/x/sync/errgroup for the fan-out/fan-in bookkeeping that
// teacher file hand-rolled with a mutex-guarded counter.
package async

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultPoolSize is the bounded worker pool's default concurrency, used
// when a caller doesn't override it via .naabrc or an explicit argument.
const DefaultPoolSize = 8

// Timeout runs fn and, if it doesn't finish within d, returns a plain error
// naming d; that error is not a NaabError and carries no E_TIMEOUT kind.
// fn must itself observe ctx cancellation to actually stop
// working; Timeout cannot forcibly abort a goroutine that ignores it.
func Timeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	result := make(chan T, 1)
	errCh := make(chan error, 1)
	go func() {
		v, err := fn(ctx)
		if err != nil {
			errCh <- err
			return
		}
		result <- v
	}()

	select {
	case v := <-result:
		return v, nil
	case err := <-errCh:
		return zero, err
	case <-ctx.Done():
		return zero, fmt.Errorf("async: operation exceeded %s", d)
	}
}

// RetryPolicy controls Retry's backoff between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     float64 // multiplier applied to Delay after each failed attempt
}

// DefaultRetryPolicy makes up to three attempts in all, waiting 100ms
// before the second and doubling the wait before each later one.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 100 * time.Millisecond, Backoff: 2}

// Retry calls fn until it succeeds or policy.MaxAttempts is exhausted,
// sleeping policy.Delay (scaled by policy.Backoff each round) between
// attempts, and returns the last error on exhaustion.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	delay := policy.Delay
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		if policy.Backoff > 0 {
			delay = time.Duration(float64(delay) * policy.Backoff)
		}
	}
	return zero, fmt.Errorf("async: retry exhausted after %d attempts: %w", policy.MaxAttempts, lastErr)
}

// Parallel runs every fn concurrently, bounded by DefaultPoolSize, and
// returns their results in input order. The first error cancels the shared
// context so sibling tasks that check ctx can stop early; Parallel still
// waits for every goroutine to return before reporting that error.
func Parallel[T any](ctx context.Context, fns []func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultPoolSize)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			v, err := fn(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Race runs every fn concurrently and returns the first one to complete
// successfully, cancelling the rest. If every fn fails, Race returns the
// last error observed.
func Race[T any](ctx context.Context, fns []func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	out := make(chan outcome, len(fns))
	for _, fn := range fns {
		fn := fn
		go func() {
			v, err := fn(ctx)
			out <- outcome{v, err}
		}()
	}

	var lastErr error
	for range fns {
		o := <-out
		if o.err == nil {
			return o.v, nil
		}
		lastErr = o.err
	}
	return zero, lastErr
}

// Pool is a bounded worker pool: Submit blocks once Size in-flight tasks
// are running, matching the teacher's semaphore-channel pattern rather than
// an unbounded goroutine-per-task fan-out.
type Pool struct {
	sem chan struct{}
}

// NewPool constructs a Pool with the given concurrency (DefaultPoolSize if
// size <= 0).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Submit runs fn once a pool slot is free, blocking the caller until
// either a slot opens or ctx is cancelled.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()
	return fn(ctx)
}
