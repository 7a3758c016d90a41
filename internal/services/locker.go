package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Locker serialises read-modify-write sequences on one key. The returned
// func releases the lock and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Lock keys. Call-level keys are always taken before queue entry keys, and
// an interpreter key before a call key.
func boothQueueLockKey(boothID uuid.UUID) string { return "booth:" + boothID.String() + ":queue" }
func queueEntryLockKey(entryID uuid.UUID) string { return "queue_entry:" + entryID.String() }
func callCreateLockKey(entryID uuid.UUID) string { return "call:create:" + entryID.String() }
func callLockKey(callID uuid.UUID) string        { return "call:" + callID.String() }
func interpreterLockKey(id uuid.UUID) string     { return "interpreter:" + id.String() }

// LocalLocker is an in-process keyed mutex for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*lockSlot)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.drop(key, slot)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}
