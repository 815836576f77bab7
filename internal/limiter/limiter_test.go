package limiter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNeverExceedsCapacity(t *testing.T) {
	l := New(3)
	var inFlight, peak int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Run(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Equal(t, int32(0), atomic.LoadInt32(&inFlight))
}

func TestRunAdmitsWaitersInFIFOOrder(t *testing.T) {
	l := New(1)
	hold := make(chan struct{})
	started := make(chan struct{})

	go l.Run(context.Background(), func(ctx context.Context) error {
		close(started)
		<-hold
		return nil
	})
	<-started

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Run(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Let each waiter enqueue before the next one arrives.
		time.Sleep(10 * time.Millisecond)
	}

	close(hold)
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRunPropagatesErrorsAndReleases(t *testing.T) {
	l := New(1)
	boom := errors.New("boom")

	err := l.Run(context.Background(), func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	// The slot must be free again.
	ran := false
	require.NoError(t, l.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}

func TestRunReleasesOnPanic(t *testing.T) {
	l := New(1)

	assert.Panics(t, func() {
		_ = l.Run(context.Background(), func(ctx context.Context) error { panic("task failed") })
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, l.Run(ctx, func(ctx context.Context) error { return nil }))
}

func TestRunHonoursContextWhileQueued(t *testing.T) {
	l := New(1)
	hold := make(chan struct{})
	defer close(hold)
	started := make(chan struct{})
	go l.Run(context.Background(), func(ctx context.Context) error {
		close(started)
		<-hold
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := l.Run(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)
}

func TestDoReturnsValue(t *testing.T) {
	l := New(2)
	v, err := Do(context.Background(), l, func(ctx context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestMapPreservesInputOrder(t *testing.T) {
	l := New(8)
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	// Later inputs finish first.
	out := Map(context.Background(), l, inputs, func(ctx context.Context, n int) int {
		time.Sleep(time.Duration(len(inputs)-n) * 3 * time.Millisecond)
		return n * n
	})

	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 49, 64, 81, 100}, out)
}

func TestUnlimited(t *testing.T) {
	l := New(0)
	assert.Equal(t, 0, l.Max())
	assert.NoError(t, l.Run(context.Background(), func(ctx context.Context) error { return nil }))
}
