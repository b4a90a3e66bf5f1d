package lifecycle

import (
	"context"
	"fmt"
	"time"

	"vastramitra/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker serialises commands on one booking. Different keys never wait on
// each other.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker locks within this process only.
type LocalLocker struct {
	mu *utils.KeyedMutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{mu: utils.NewKeyedMutex()}
}

func (l *LocalLocker) Acquire(_ context.Context, key string) (func(), error) {
	return l.mu.Lock(key), nil
}

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLocker locks across processes with SET NX and a TTL, so a crashed
// holder frees the booking after ttl.
type RedisLocker struct {
	client  *redis.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait, backoff: 50 * time.Millisecond}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := "lock:" + key
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for lock on %s", key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
	}, nil
}
