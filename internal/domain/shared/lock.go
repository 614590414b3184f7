package shared

import (
	"context"
	"time"
)

// ResourceLocker serializes writers of the same resource.
// Implementations must return ErrLocked when the key is already held.
type ResourceLocker interface {
	// Acquire takes the lock for key and returns a release function
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)

	// Close releases resources held by the locker
	Close() error
}

// LockConfig holds configuration for resource locking
type LockConfig struct {
	// TTL bounds how long a crashed holder can keep a key locked
	// Default: 30 seconds
	TTL time.Duration

	// Enabled determines whether locking is enabled
	// Default: true
	Enabled bool
}

// DefaultLockConfig returns the default lock configuration
func DefaultLockConfig() LockConfig {
	return LockConfig{
		TTL:     30 * time.Second,
		Enabled: true,
	}
}
