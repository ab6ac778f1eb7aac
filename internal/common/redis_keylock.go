package common

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisKeyLock is the KeyLocker for multi-instance deployments. Each key
// maps to a redis string set with NX and a TTL; release checks the holder
// token so an expired lock is never deleted out from under a new holder.
type RedisKeyLock struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

var _ KeyLocker = (*RedisKeyLock)(nil)

// releaseScript deletes the lock only if the token still matches.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisKeyLock(client *redis.Client) *RedisKeyLock {
	return &RedisKeyLock{
		client: client,
		ttl:    10 * time.Second,
		retry:  25 * time.Millisecond,
	}
}

func (kl *RedisKeyLock) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(kl.retry)
	defer ticker.Stop()

	for {
		ok, err := kl.client.SetNX(ctx, lockKey, token, kl.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("keylock: acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, kl.client, []string{lockKey}, token).Err()
	}
	return release, nil
}
