package store

import (
	"context"
	"sync/atomic"
)

// InMemoryCounter keeps the counter in process memory.
type InMemoryCounter struct {
	value atomic.Uint64
}

func NewInMemory() *InMemoryCounter {
	return &InMemoryCounter{}
}

func (c *InMemoryCounter) Increment(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.value.Add(1), nil
}

func (c *InMemoryCounter) Value(_ context.Context) (uint64, error) {
	return c.value.Load(), nil
}
