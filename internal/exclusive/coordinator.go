// Package exclusive provides a fair mutual-exclusion primitive that serializes
// every mutation of the device snapshot.
//
// Waiters are granted access strictly in arrival order. The lock is not
// reentrant: a holder that calls Acquire again before Release blocks until its
// context is done.
package exclusive

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Coordinator is a FIFO mutex with context-aware acquisition.
type Coordinator struct {
	sem *semaphore.Weighted
}

func New() *Coordinator {
	return &Coordinator{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until access is granted or ctx is done.
// On error the coordinator is not held.
func (c *Coordinator) Acquire(ctx context.Context) error {
	return c.sem.Acquire(ctx, 1)
}

// Release gives access to the next waiter. Calling it without holding the
// coordinator panics.
func (c *Coordinator) Release() {
	c.sem.Release(1)
}

// TryAcquire acquires without blocking and reports success.
func (c *Coordinator) TryAcquire() bool {
	return c.sem.TryAcquire(1)
}

// RunExclusive runs fn while holding the coordinator and releases it on every
// exit path, including a panic in fn.
func (c *Coordinator) RunExclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.Acquire(ctx); err != nil {
		return err
	}
	defer c.Release()
	return fn(ctx)
}

// Do is RunExclusive for functions that produce a value.
func Do[T any](ctx context.Context, c *Coordinator, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := c.Acquire(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer c.Release()
	return fn(ctx)
}
