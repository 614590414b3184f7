package cache

import (
	"fmt"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates resource lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory locker
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLocker creates a Redis-backed locker
func (f *LockerFactory) CreateRedisLocker() (shared.ResourceLocker, error) {
	locker, err := NewRedisLocker(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis locker: %w", err)
	}
	return locker, nil
}

// CreateInMemoryLocker creates a process-local locker
func (f *LockerFactory) CreateInMemoryLocker() shared.ResourceLocker {
	return NewInMemoryLocker()
}

// CreateLocker picks the locker for backend ("memory" or "redis").
// With "redis" it falls back to memory when Redis is unreachable and fallback is allowed.
func (f *LockerFactory) CreateLocker(backend string) (shared.ResourceLocker, error) {
	if backend != "redis" {
		f.logger.Info("using in-memory payment locker")
		return f.CreateInMemoryLocker(), nil
	}

	locker, err := f.CreateRedisLocker()
	if err == nil {
		f.logger.Info("using Redis payment locker")
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for payment locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory payment locker. "+
		"Concurrent updates are only serialized within this instance.",
		zap.Error(err),
	)
	return f.CreateInMemoryLocker(), nil
}
