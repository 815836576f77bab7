// Package limiter bounds how many tasks run at once. Callers beyond the
// cap wait in FIFO order and are admitted one-in-one-out.
package limiter

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Limiter caps in-flight tasks. A nil or zero-capacity Limiter is unlimited.
type Limiter struct {
	sem *semaphore.Weighted
	max int
}

// New returns a Limiter admitting at most max concurrent tasks. max <= 0 means unlimited.
func New(max int) *Limiter {
	if max <= 0 {
		return &Limiter{}
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(max)), max: max}
}

// Max returns the configured capacity, 0 when unlimited.
func (l *Limiter) Max() int {
	if l == nil {
		return 0
	}
	return l.max
}

// Run waits for a slot, runs task and returns its error unchanged. The slot
// is released whether task returns or panics. If ctx ends while the caller is
// still queued, task is not run and ctx.Err() is returned.
func (l *Limiter) Run(ctx context.Context, task func(context.Context) error) error {
	if l != nil && l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer l.sem.Release(1)
	}
	return task(ctx)
}

// Do is Run for tasks that produce a value.
func Do[T any](ctx context.Context, l *Limiter, task func(context.Context) (T, error)) (T, error) {
	var out T
	err := l.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = task(ctx)
		return err
	})
	return out, err
}

// Map applies fn to every input through the limiter and returns the outputs
// in input order, regardless of completion order. fn must not fail; inputs
// whose turn never comes because ctx ended keep the zero value.
func Map[In, Out any](ctx context.Context, l *Limiter, inputs []In, fn func(context.Context, In) Out) []Out {
	results := make([]Out, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Run(ctx, func(ctx context.Context) error {
				results[i] = fn(ctx, in)
				return nil
			})
		}()
	}
	wg.Wait()
	return results
}
