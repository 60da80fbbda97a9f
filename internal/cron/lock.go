package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgredis "github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
)

// defaultLockTTL outlives one cycle so a crashed worker frees the lock on its own.
const defaultLockTTL = 30 * time.Minute

// Lock keeps concurrent workers from running the same cycle.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type leaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a lease on a single Redis key. The value written is a random
// token, so a worker whose lease expired cannot delete a successor's lease.
type RedisLock struct {
	store leaseStore
	key   string
	ttl   time.Duration

	mu    sync.Mutex
	token string
}

func NewRedisLock(store leaseStore, key string, ttl time.Duration) (*RedisLock, error) {
	switch {
	case store == nil:
		return nil, errors.New("cron lock: redis store is required")
	case key == "":
		return nil, errors.New("cron lock: key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	won, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("cron lock %s: acquire: %w", l.key, err)
	}
	if won {
		l.mu.Lock()
		l.token = token
		l.mu.Unlock()
	}
	return won, nil
}

// Release is a no-op unless this instance still holds the lease.
func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""

	current, err := l.store.Get(ctx, l.key)
	switch {
	case pkgredis.IsMiss(err):
		return nil
	case err != nil:
		return fmt.Errorf("cron lock %s: read holder: %w", l.key, err)
	case current != token:
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("cron lock %s: release: %w", l.key, err)
	}
	return nil
}
