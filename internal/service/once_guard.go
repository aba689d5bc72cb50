package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OnceGuard is a distributed at-most-once latch. The distribution engine
// uses it so concurrent runs never compute two different random assignments
// for the same panel, and the sweep uses it to keep per-day triggers
// idempotent.
type OnceGuard interface {
	// Acquire returns true when the caller won the key for the ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type redisOnceGuard struct {
	client *redis.Client
}

func NewOnceGuard(client *redis.Client) OnceGuard {
	return &redisOnceGuard{client: client}
}

func (g *redisOnceGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis setnx %s: %v", ErrUpstream, key, err)
	}
	return ok, nil
}
