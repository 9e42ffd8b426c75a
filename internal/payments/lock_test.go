package payments

import (
	"context"
	"testing"
	"time"

	"triptrek/internal/shared/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*RedisOrderLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisOrderLock(client, 15*time.Second), mr
}

func TestRedisOrderLockIsExclusive(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()
	bookingID := uuid.New()

	token, err := lock.Acquire(ctx, bookingID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(constants.BuildPaymentOrderLockKey(bookingID)))

	_, err = lock.Acquire(ctx, bookingID)
	assert.ErrorIs(t, err, ErrOrderInProgress)

	// Other bookings are unaffected
	_, err = lock.Acquire(ctx, uuid.New())
	assert.NoError(t, err)

	require.NoError(t, lock.Release(ctx, bookingID, token))
	_, err = lock.Acquire(ctx, bookingID)
	assert.NoError(t, err)
}

func TestRedisOrderLockReleaseChecksOwner(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()
	bookingID := uuid.New()

	_, err := lock.Acquire(ctx, bookingID)
	require.NoError(t, err)

	require.NoError(t, lock.Release(ctx, bookingID, "someone-else"))
	assert.True(t, mr.Exists(constants.BuildPaymentOrderLockKey(bookingID)))
}

func TestRedisOrderLockExpires(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()
	bookingID := uuid.New()

	_, err := lock.Acquire(ctx, bookingID)
	require.NoError(t, err)

	mr.FastForward(16 * time.Second)

	_, err = lock.Acquire(ctx, bookingID)
	assert.NoError(t, err)
}
