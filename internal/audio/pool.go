package audio

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of CPU-bound preprocessing jobs running at once.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool admitting at most workers concurrent jobs.
func NewPool(workers int) *Pool {
	return &Pool{sem: semaphore.NewWeighted(int64(max(workers, 1)))}
}

// Do runs fn once a slot is free. It returns ctx's error if ctx ends first.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		var zero T
		return zero, fmt.Errorf("audio: waiting for worker: %w", err)
	}
	defer p.sem.Release(1)

	return fn()
}
