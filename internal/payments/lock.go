package payments

import (
	"context"
	"fmt"
	"time"

	"triptrek/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OrderLocker serializes order opening per booking
type OrderLocker interface {
	Acquire(ctx context.Context, bookingID uuid.UUID) (token string, err error)
	Release(ctx context.Context, bookingID uuid.UUID, token string) error
}

// RedisOrderLock is a single-instance Redis lock: SET NX PX to take it and a
// compare-and-delete script to give it back, so a holder whose TTL lapsed
// cannot free someone else's lock.
type RedisOrderLock struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisOrderLock(redisClient *redis.Client, ttl time.Duration) *RedisOrderLock {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &RedisOrderLock{redis: redisClient, ttl: ttl}
}

// Lua script for releasing only our own lock
const luaCompareAndDelete = `
-- KEYS[1] = lock key
-- ARGV[1] = owner token
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

var compareAndDelete = redis.NewScript(luaCompareAndDelete)

func (l *RedisOrderLock) Acquire(ctx context.Context, bookingID uuid.UUID) (string, error) {
	if l.redis == nil {
		return "", fmt.Errorf("redis client not available")
	}

	token := uuid.NewString()
	ok, err := l.redis.SetNX(ctx, constants.BuildPaymentOrderLockKey(bookingID), token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire payment order lock: %w", err)
	}
	if !ok {
		return "", ErrOrderInProgress
	}
	return token, nil
}

func (l *RedisOrderLock) Release(ctx context.Context, bookingID uuid.UUID, token string) error {
	if l.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	_, err := compareAndDelete.Run(ctx, l.redis, []string{constants.BuildPaymentOrderLockKey(bookingID)}, token).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release payment order lock: %w", err)
	}
	return nil
}

// NoopOrderLocker relies on the payments row lock alone. Used when Redis is down.
type NoopOrderLocker struct{}

func (NoopOrderLocker) Acquire(context.Context, uuid.UUID) (string, error) { return "", nil }
func (NoopOrderLocker) Release(context.Context, uuid.UUID, string) error   { return nil }
