package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const counterKey = "sbt:kyc:count"

// RedisCounter keeps the counter in a single Redis key.
type RedisCounter struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Increment(ctx context.Context) (uint64, error) {
	v, err := c.client.Incr(ctx, counterKey).Uint64()
	if err != nil {
		return 0, fmt.Errorf("increment kyc counter: %w", err)
	}
	return v, nil
}

func (c *RedisCounter) Value(ctx context.Context) (uint64, error) {
	v, err := c.client.Get(ctx, counterKey).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read kyc counter: %w", err)
	}
	return v, nil
}
