// Package lock provides the cross-process mutual exclusion used by the
// highest-bid arbiter.  A lock is a key holding a random owner token with a
// bounded expiry; only the owner of the current token may release it.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker acquires and releases expiring named locks.
type Locker interface {
	// Acquire tries once to take key for ttl.  It returns the owner token
	// and true on success, or "" and false when someone else holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	// Release deletes key only if it still holds token and reports whether
	// it did.
	Release(ctx context.Context, key, token string) (bool, error)
}

// AuctionKey is the lock key guarding one auction's highest bid.
func AuctionKey(auctionID string) string {
	return fmt.Sprintf("auction:%s:lock", auctionID)
}

// releaseScript deletes KEYS[1] only when its value equals ARGV[1].  Doing
// the compare and the delete in one script keeps a late owner whose lock
// already expired from deleting a lock taken over by someone else.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisLocker implements Locker with SET NX EX and a compare-then-delete
// script.
type RedisLocker struct {
	rdb redis.Cmdable
}

// NewRedisLocker returns a RedisLocker backed by rdb.
func NewRedisLocker(rdb redis.Cmdable) *RedisLocker { return &RedisLocker{rdb: rdb} }

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) (bool, error) {
	n, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("release %s: %w", key, err)
	}
	return n == 1, nil
}
