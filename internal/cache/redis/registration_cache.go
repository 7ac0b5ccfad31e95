package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	rplatform "advent-raffle-backend/internal/platform/redis"
)

// RegistrationCache caches "is this wallet registered" answers.
type RegistrationCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewRegistrationCache(client *rplatform.Client, ttl time.Duration) *RegistrationCache {
	return &RegistrationCache{client: client, ttl: ttl}
}

func (c *RegistrationCache) key(wallet string) string { return fmt.Sprintf("registration:%s", wallet) }

// Get returns the cached answer; found is false on a miss.
func (c *RegistrationCache) Get(ctx context.Context, wallet string) (registered, found bool, err error) {
	v, err := c.client.Get(ctx, c.key(wallet)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return v == "1", true, nil
}

func (c *RegistrationCache) Set(ctx context.Context, wallet string, registered bool) error {
	v := "0"
	if registered {
		v = "1"
	}
	return c.client.Set(ctx, c.key(wallet), v, c.ttl).Err()
}

// Invalidate removes the cached entry for the wallet.
func (c *RegistrationCache) Invalidate(ctx context.Context, wallet string) error {
	return c.client.Del(ctx, c.key(wallet)).Err()
}
