package policies

import (
	"context"
	"errors"
)

var ErrLockNotAcquired = errors.New("policies: lock not acquired")

// Locker serializes work on a key (a property id) across concurrent requests.
// The returned release func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// NopLocker hands out locks without any exclusion; storage-level version
// checks are then the only guard against concurrent writes.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// PropertyLockKey namespaces property ids in a shared lock keyspace.
func PropertyLockKey(propertyID string) string {
	return "lock:property:" + propertyID
}
