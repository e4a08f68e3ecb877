package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Locker hands out per-key leases with an expiry, so a crashed holder
// cannot block a key forever.
type Locker struct {
	store  Store
	prefix string
}

// NewLocker creates a locker over store
func NewLocker(store Store, prefix string) *Locker {
	return &Locker{store: store, prefix: prefix}
}

// TryLock acquires the lease for key without waiting. The returned unlock
// func releases it only if this caller still holds it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := []byte(uuid.NewString())
	lockKey := l.prefix + key

	ok, err := l.store.SetNX(ctx, lockKey, token, ttl)
	if err != nil || !ok {
		return nil, false, err
	}

	unlock := func() {
		// the request context may already be cancelled at this point
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_, _ = l.store.CompareAndDelete(releaseCtx, lockKey, token)
	}
	return unlock, true, nil
}
