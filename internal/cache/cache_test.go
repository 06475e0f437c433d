package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

func TestGetOrComputeCachesWithinTTL(t *testing.T) {
	c := New[int](0)
	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	first, err := c.GetOrCompute(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)
	second, err := c.GetOrCompute(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrComputeRecomputesAfterExpiry(t *testing.T) {
	c := New[int](0)
	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	first, err := c.GetOrCompute(context.Background(), "k", 10*time.Millisecond, fn)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	time.Sleep(20 * time.Millisecond)

	second, err := c.GetOrCompute(context.Background(), "k", 10*time.Millisecond, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, second)
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := New[int](0)
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		close(entered)
		<-release
		return 7, nil
	}

	const waiters = 10
	results := make([]int, waiters)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := c.GetOrCompute(context.Background(), "k", time.Minute, fn)
		assert.NoError(t, err)
		results[0] = v
	}()
	<-entered

	for i := 1; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrCompute(context.Background(), "k", time.Minute, fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	// Let the late callers join the in-flight computation.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}

func TestGetOrComputeFailureStoresNothing(t *testing.T) {
	c := New[int](0)
	boom := errors.New("boom")

	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	_, ok := c.Get("k")
	assert.False(t, ok, "failed computation must not store an entry")

	// A later successful computation works normally.
	v, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestGetOrComputeFreshKeyUnaffectedByOtherFlight(t *testing.T) {
	c := New[int](0)

	_, err := c.GetOrCompute(context.Background(), "fresh", time.Minute, func(context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	// Stall a computation on a different key.
	release := make(chan struct{})
	go c.GetOrCompute(context.Background(), "slow", time.Minute, func(context.Context) (int, error) {
		<-release
		return 2, nil
	})
	defer close(release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, ok := c.Get("fresh")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fresh read blocked on an unrelated in-flight computation")
	}
}

func TestGetOrComputeBoundedWait(t *testing.T) {
	c := New[int](30 * time.Millisecond)

	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		time.Sleep(300 * time.Millisecond)
		return 1, nil
	})

	assert.ErrorIs(t, err, core.ErrComputationTimeout)
}

func TestGetOrComputeCallerCancelDoesNotCancelFlight(t *testing.T) {
	c := New[int](0)
	release := make(chan struct{})
	computed := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctx, "k", time.Minute, func(fnCtx context.Context) (int, error) {
			<-release
			// The flight context must survive the caller's cancellation.
			if fnCtx.Err() != nil {
				return 0, fnCtx.Err()
			}
			defer close(computed)
			return 9, nil
		})
		errc <- err
	}()

	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	select {
	case <-computed:
	case <-time.After(time.Second):
		t.Fatal("flight did not complete after caller cancellation")
	}

	v, ok := c.Get("k")
	assert.True(t, ok, "flight result must be cached for other callers")
	assert.Equal(t, 9, v)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	c := New[int](0)
	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)

	c.Invalidate("k")

	v, err := c.GetOrCompute(context.Background(), "k", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCleanExpired(t *testing.T) {
	c := New[int](0)
	fn := func(context.Context) (int, error) { return 1, nil }

	_, err := c.GetOrCompute(context.Background(), "short", time.Millisecond, fn)
	require.NoError(t, err)
	_, err = c.GetOrCompute(context.Background(), "long", time.Minute, fn)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
}

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	c := New[int](0)
	_, err := c.GetOrCompute(context.Background(), "k", time.Millisecond, func(context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	assert.Eventually(t, func() bool {
		return c.Size() == 0
	}, time.Second, 10*time.Millisecond)
}
