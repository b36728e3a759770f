package lock

import (
	"context"
	"errors"
	"time"
)

// RunKey guards campaign runs across replicas.
const RunKey = "campaigns:run"

var ErrAlreadyHeld = errors.New("lock already held by this process")
var ErrNotAcquired = errors.New("lock not acquired")
var ErrNotHeld = errors.New("lock not held by this process")

// Locker abstracts distributed locking implementations.
type Locker interface {
	// Acquire attempts to lock a key for the given TTL without waiting.
	Acquire(ctx context.Context, key string, ttl time.Duration) error
	// Refresh extends a held lock by ttl.
	Refresh(ctx context.Context, key string, ttl time.Duration) error
	// Release frees the lock for the given key.
	Release(ctx context.Context, key string) error
}

// NopLocker never contends. It is used when a single replica runs.
type NopLocker struct{}

// NewNopLocker constructs a locker that always succeeds.
func NewNopLocker() *NopLocker {
	return &NopLocker{}
}

func (NopLocker) Acquire(context.Context, string, time.Duration) error { return nil }
func (NopLocker) Refresh(context.Context, string, time.Duration) error { return nil }
func (NopLocker) Release(context.Context, string) error { return nil }
