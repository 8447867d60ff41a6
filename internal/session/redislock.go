package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// Only delete the lock if we still own it. Releasing pushes a wake token so
// one blocked waiter retries straight away.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		redis.call("del", KEYS[1])
		redis.call("rpush", KEYS[2], "1")
		redis.call("pexpire", KEYS[2], ARGV[2])
		return 1
	else
		return 0
	end
`)

// RedisLocker is a Locker shared between processes. Locks expire after ttl so
// a crashed holder can't wedge a player forever.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ Locker = (*RedisLocker)(nil)

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Lock takes the lock with SETNX. While it is held the caller blocks on the
// key's wake list instead of retrying on a timer. A wait ends early when the
// holder releases, and otherwise after ttl, when a crashed holder's lock has
// expired.
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "player-lock:" + key
	wakeKey := "player-lock-wake:" + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, lockKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			break
		}

		wait := r.ttl
		if deadline, ok := ctx.Deadline(); ok {
			wait = min(wait, time.Until(deadline))
		}
		if wait <= 0 {
			return nil, context.DeadlineExceeded
		}
		// BLPOP timeouts have whole-second resolution.
		wait = max(wait, time.Second)
		err = r.client.BLPop(ctx, wait, wakeKey).Err()
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to wait for lock: %w", err)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be done; release regardless.
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			ttlMS := strconv.FormatInt(r.ttl.Milliseconds(), 10)
			if err := releaseScript.Run(rctx, r.client, []string{lockKey, wakeKey}, token, ttlMS).Err(); err != nil {
				r.logger.Error("Failed to release player lock", "key", key, "error", err)
			}
		})
	}, nil
}
