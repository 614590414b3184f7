package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultLockPrefix = "sfa:lock:"

// RedisLocker implements ResourceLocker with redislock, so every instance
// of the store sees the same held keys.
type RedisLocker struct {
	client    *redis.Client
	locker    *redislock.Client
	keyPrefix string
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisLocker connects to Redis and verifies the connection
func NewRedisLocker(cfg RedisConfig, logger *zap.Logger) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLockerWithClient(client, "", logger), nil
}

// NewRedisLockerWithClient wraps an existing client
func NewRedisLockerWithClient(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client:    client,
		locker:    redislock.New(client),
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Acquire obtains key without retrying. A held key yields shared.ErrLocked.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.locker.Obtain(ctx, l.keyPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// Close closes the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (l *RedisLocker) GetClient() *redis.Client {
	return l.client
}

var _ shared.ResourceLocker = (*RedisLocker)(nil)
