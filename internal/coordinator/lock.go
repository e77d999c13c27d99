package coordinator

import "context"

// SyncLock is the single-slot gate around state-changing actions.
type SyncLock struct {
	slot chan struct{}
}

// NewSyncLock returns an unlocked SyncLock.
func NewSyncLock() *SyncLock {
	return &SyncLock{slot: make(chan struct{}, 1)}
}

// TryAcquire takes the lock if it is free.
func (l *SyncLock) TryAcquire() bool {
	select {
	case l.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Acquire waits for the lock or ctx.
func (l *SyncLock) Acquire(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the lock. Releasing an unlocked SyncLock panics.
func (l *SyncLock) Release() {
	select {
	case <-l.slot:
	default:
		panic("coordinator: release of unlocked SyncLock")
	}
}

// Held reports whether the lock is currently taken.
func (l *SyncLock) Held() bool {
	return len(l.slot) == 1
}
