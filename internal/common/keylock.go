package common

import (
	"context"
	"sync"
)

// KeyLocker serializes mutations per store key so check-then-act sequences
// (membership existence check + insert, XP read-modify-write) never race.
// Keys are "collection:id" strings.
type KeyLocker interface {
	// Acquire blocks until the key lock is held or ctx is done. The
	// returned func releases the lock and must always be called.
	Acquire(ctx context.Context, key string) (func(), error)
}

// MutexKeyLock is the in-process KeyLocker for single-instance
// deployments. Locks are kept for the life of the process; the key space
// (users, clubs, events) is small enough that eviction is not worth it.
type MutexKeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ KeyLocker = (*MutexKeyLock)(nil)

func NewMutexKeyLock() *MutexKeyLock {
	return &MutexKeyLock{locks: make(map[string]*sync.Mutex)}
}

func (kl *MutexKeyLock) lockFor(key string) *sync.Mutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if l, exists := kl.locks[key]; exists {
		return l
	}
	l := &sync.Mutex{}
	kl.locks[key] = l
	return l
}

func (kl *MutexKeyLock) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := kl.lockFor(key)
	l.Lock()
	return l.Unlock, nil
}
