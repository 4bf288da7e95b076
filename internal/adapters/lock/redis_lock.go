package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/providers"
	redisclient "github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/redis"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements the LockProvider interface with SET NX PX leases
type RedisLock struct {
	client *redisclient.Client
}

// NewRedisLock creates a new Redis-backed lock provider
func NewRedisLock(client *redisclient.Client) providers.LockProvider {
	return &RedisLock{client: client}
}

// TryAcquire takes the lease on key if nobody holds it
func (l *RedisLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.Client().SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client.Client(), []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}

	return release, true, nil
}
