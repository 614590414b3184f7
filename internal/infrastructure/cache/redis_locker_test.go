package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// redisClientForTest connects to SFA_TEST_REDIS_ADDR or skips the test
func redisClientForTest(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("SFA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SFA_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return client
}

func TestRedisLocker_Acquire(t *testing.T) {
	client := redisClientForTest(t)
	locker := NewRedisLockerWithClient(client, "sfa:test:lock:", zap.NewNop())
	defer locker.Close()

	ctx := context.Background()
	key := "payment-" + time.Now().Format("150405.000000000")

	release, err := locker.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, 5*time.Second)
	assert.ErrorIs(t, err, shared.ErrLocked)

	release()

	release, err = locker.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	release()
}

func TestNewRedisLockerWithClient_Defaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	locker := NewRedisLockerWithClient(client, "", nil)
	defer locker.Close()

	assert.Equal(t, defaultLockPrefix, locker.keyPrefix)
	assert.NotNil(t, locker.logger)
	assert.Same(t, client, locker.GetClient())
}
