package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLocker_Acquire(t *testing.T) {
	locker := NewInMemoryLocker()
	defer locker.Close()

	ctx := context.Background()

	t.Run("acquires a free key", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "payment-1", time.Hour)
		require.NoError(t, err)
		require.NotNil(t, release)
		release()
		assert.Equal(t, 0, locker.Size())
	})

	t.Run("rejects a held key", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "payment-2", time.Hour)
		require.NoError(t, err)
		defer release()

		_, err = locker.Acquire(ctx, "payment-2", time.Hour)
		assert.ErrorIs(t, err, shared.ErrLocked)
	})

	t.Run("key is free again after release", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "payment-3", time.Hour)
		require.NoError(t, err)
		release()

		release, err = locker.Acquire(ctx, "payment-3", time.Hour)
		require.NoError(t, err)
		release()
	})

	t.Run("expired lease can be taken over", func(t *testing.T) {
		_, err := locker.Acquire(ctx, "payment-4", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		release, err := locker.Acquire(ctx, "payment-4", time.Hour)
		require.NoError(t, err)
		release()
	})

	t.Run("stale release does not drop a newer holder", func(t *testing.T) {
		stale, err := locker.Acquire(ctx, "payment-5", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		current, err := locker.Acquire(ctx, "payment-5", time.Hour)
		require.NoError(t, err)
		defer current()

		stale()
		_, err = locker.Acquire(ctx, "payment-5", time.Hour)
		assert.ErrorIs(t, err, shared.ErrLocked)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := locker.Acquire(cctx, "payment-6", time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestInMemoryLocker_Concurrent(t *testing.T) {
	locker := NewInMemoryLocker()
	defer locker.Close()

	var won atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := locker.Acquire(context.Background(), "shared", time.Hour); err == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
}

func TestInMemoryLocker_Cleanup(t *testing.T) {
	locker := NewInMemoryLocker()
	defer locker.Close()

	_, err := locker.Acquire(context.Background(), "short", time.Millisecond)
	require.NoError(t, err)
	_, err = locker.Acquire(context.Background(), "long", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	locker.cleanup()

	assert.Equal(t, 1, locker.Size())
}

func TestInMemoryLocker_CloseTwice(t *testing.T) {
	locker := NewInMemoryLocker()
	assert.NoError(t, locker.Close())
	assert.NoError(t, locker.Close())
}

func TestLockerFactory_CreateLocker(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{})
		locker, err := f.CreateLocker("memory")
		require.NoError(t, err)
		defer locker.Close()
		assert.IsType(t, &InMemoryLocker{}, locker)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1}, WithInMemoryFallback(false))
		_, err := f.CreateLocker("redis")
		assert.Error(t, err)
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1})
		locker, err := f.CreateLocker("redis")
		require.NoError(t, err)
		defer locker.Close()
		assert.IsType(t, &InMemoryLocker{}, locker)
	})
}
