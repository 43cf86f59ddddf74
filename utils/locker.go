// File: utils/locker.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when the lock could not be taken before the
// context expired.
var ErrLockNotAcquired = errors.New("lock not acquired")

const lockRetryInterval = 25 * time.Millisecond

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another writer is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes writers on a shared key via SETNX with a TTL.
// The booking path locks on the professional ID so that two overlapping
// booking attempts for the same professional never interleave.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a locker; ttl bounds how long a crashed holder can
// block other writers.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Lock acquires the named lock, polling until ctx is done. The returned
// function releases the lock.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			release := func() {
				rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
			}
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockNotAcquired
		case <-time.After(lockRetryInterval):
		}
	}
}
