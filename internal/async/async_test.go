package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeoutReturnsValueWhenFastEnough(t *testing.T) {
	v, err := Timeout(context.Background(), 50*time.Millisecond, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestTimeoutFiresOnSlowOperation(t *testing.T) {
	_, err := Timeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	v, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, 3, attempts)
}

func TestRetryExhaustsAndReturnsLastError(t *testing.T) {
	_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		return 0, errors.New("always fails")
	})
	require.Error(t, err)
}

func TestParallelPreservesOrder(t *testing.T) {
	fns := make([]func(context.Context) (int, error), 5)
	for i := range fns {
		i := i
		fns[i] = func(ctx context.Context) (int, error) { return i * i, nil }
	}
	results, err := Parallel(context.Background(), fns)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 4, 9, 16}, results)
}

func TestParallelPropagatesFirstError(t *testing.T) {
	fns := []func(context.Context) (int, error){
		func(ctx context.Context) (int, error) { return 0, errors.New("boom") },
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	}
	_, err := Parallel(context.Background(), fns)
	require.Error(t, err)
}

func TestRaceReturnsFirstSuccess(t *testing.T) {
	fns := []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return "slow", nil
		},
		func(ctx context.Context) (string, error) { return "fast", nil },
	}
	v, err := Race(context.Background(), fns)
	require.NoError(t, err)
	require.Equal(t, "fast", v)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)
	var active, maxActive int
	var mu sync.Mutex
	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			_ = pool.Submit(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
				done <- struct{}{}
				return nil
			})
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}
	require.LessOrEqual(t, maxActive, 2)
}
