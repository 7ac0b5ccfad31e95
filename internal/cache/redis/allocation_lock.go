package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"advent-raffle-backend/internal/domain/calendar"
	rplatform "advent-raffle-backend/internal/platform/redis"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AllocationLock is a SET NX lease per key.
type AllocationLock struct {
	client *rplatform.Client
}

func NewAllocationLock(client *rplatform.Client) *AllocationLock {
	return &AllocationLock{client: client}
}

// AcquireLock takes key for ttl and returns the lease token.
// A held key yields calendar.ErrLocked.
func (l *AllocationLock) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return "", calendar.ErrLocked
	}
	return token, nil
}

// ReleaseLock frees key if token still owns it.
func (l *AllocationLock) ReleaseLock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client.Client, []string{key}, token).Err()
}
