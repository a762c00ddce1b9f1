package controller

import "time"

// DefaultStackLockTimeout bounds stack lock acquisition. Contention on the
// stack lock is an expected, retryable condition, so the bound is short.
const DefaultStackLockTimeout = 2 * time.Second

// StackLock is the process-wide device-stack lock. Every call into the
// stack (command submission, pairing, commissioning, scans) goes through
// it. It is held only for the call itself, never across a wait for
// results.
type StackLock struct {
	ch chan struct{}
}

// NewStackLock creates an unlocked stack lock.
func NewStackLock() *StackLock {
	return &StackLock{ch: make(chan struct{}, 1)}
}

// Acquire takes the lock, giving up after the timeout. It reports whether
// the lock was acquired.
func (l *StackLock) Acquire(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case l.ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// Release returns the lock. It must only be called after a successful
// Acquire.
func (l *StackLock) Release() {
	<-l.ch
}
