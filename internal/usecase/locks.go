package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex hands out one mutex per key. Used to serialize reservation
// attempts per occasion and invoice recomputation per payer without a
// single global lock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key uuid.UUID) {
	k.get(key).Lock()
}

func (k *keyedMutex) Unlock(key uuid.UUID) {
	k.get(key).Unlock()
}

func (k *keyedMutex) get(key uuid.UUID) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if m, ok := k.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[key] = m
	return m
}

// tryLocks tracks in-flight exclusive operations per key, used to
// reject a second matching run on the same period instead of queuing it.
type tryLocks struct {
	mu    sync.Mutex
	inUse map[uuid.UUID]bool
}

func newTryLocks() *tryLocks {
	return &tryLocks{inUse: make(map[uuid.UUID]bool)}
}

func (t *tryLocks) TryLock(key uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inUse[key] {
		return false
	}
	t.inUse[key] = true
	return true
}

func (t *tryLocks) Unlock(key uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inUse, key)
}
