package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/sfa/internal/domain/shared"
)

// lease is one held key and when it lapses
type lease struct {
	token     uint64
	expiresAt time.Time
}

// InMemoryLocker implements ResourceLocker with an in-process map.
// It only serializes writers inside one process.
type InMemoryLocker struct {
	mu        sync.Mutex
	leases    map[string]lease
	nextToken uint64
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLocker creates a locker and starts the expired-lease sweeper
func NewInMemoryLocker() *InMemoryLocker {
	l := &InMemoryLocker{
		leases:   make(map[string]lease),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire takes key for ttl. A held, unexpired key yields shared.ErrLocked.
func (l *InMemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if held, ok := l.leases[key]; ok && now.Before(held.expiresAt) {
		return nil, shared.ErrLocked
	}

	l.nextToken++
	token := l.nextToken
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, token) })
	}, nil
}

// release drops key only if it is still held by token
func (l *InMemoryLocker) release(key string, token uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.leases[key]; ok && held.token == token {
		delete(l.leases, key)
	}
}

// Close stops the sweeper. Safe to call multiple times.
func (l *InMemoryLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLocker) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, held := range l.leases {
		if now.After(held.expiresAt) {
			delete(l.leases, key)
		}
	}
}

// Size returns the number of held keys (for testing/monitoring)
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.leases)
}

var _ shared.ResourceLocker = (*InMemoryLocker)(nil)
