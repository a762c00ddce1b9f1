package correlate

import (
	"errors"
	"time"
)

// Table errors.
var (
	// ErrTableBusy means the table lock could not be acquired within its
	// bound. The caller must treat this as a submission failure and must
	// not submit the command.
	ErrTableBusy = errors.New("correlation table busy")

	// ErrRequestInFlight means a request for the same node id is already
	// registered. The callbacks carry only the node id, so a second
	// concurrent request for the same node would corrupt the first one's
	// context. It is rejected instead.
	ErrRequestInFlight = errors.New("request already in flight for node")
)

// DefaultLockTimeout bounds table lock acquisition. A callback that misses
// the bound drops its update rather than stalling the stack thread.
const DefaultLockTimeout = 1 * time.Second

// timedMutex is a mutex with bounded acquisition, built on a capacity-1
// channel because sync.Mutex has no timed lock.
type timedMutex struct {
	ch chan struct{}
}

func newTimedMutex() timedMutex {
	return timedMutex{ch: make(chan struct{}, 1)}
}

func (m timedMutex) lock() {
	m.ch <- struct{}{}
}

func (m timedMutex) lockTimeout(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m.ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

func (m timedMutex) unlock() {
	<-m.ch
}

// Table maps node ids to the Context of their in-flight request.
//
// The lock is held only for the duration of a single map operation, never
// across a blocking wait. Each entry exists only while its request is in
// flight: registered immediately before submission, removed by the
// requester on every exit path.
type Table struct {
	mu          timedMutex
	entries     map[uint64]*Context
	lockTimeout time.Duration
}

// NewTable creates an empty table. A non-positive lockTimeout selects
// DefaultLockTimeout.
func NewTable(lockTimeout time.Duration) *Table {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Table{
		mu:          newTimedMutex(),
		entries:     make(map[uint64]*Context),
		lockTimeout: lockTimeout,
	}
}

// Register publishes a context under its key. It returns ErrTableBusy if
// the lock bound expires and ErrRequestInFlight if the key already has an
// entry; in both cases the caller must not proceed to submit.
func (t *Table) Register(key uint64, c *Context) error {
	if !t.mu.lockTimeout(t.lockTimeout) {
		return ErrTableBusy
	}
	defer t.mu.unlock()

	if _, exists := t.entries[key]; exists {
		return ErrRequestInFlight
	}
	t.entries[key] = c
	return nil
}

// WithContext looks up the context for key and applies fn to it under the
// table lock. It returns false without calling fn if the key is absent
// (the request already finished) or the lock bound expires. A dropped
// update is preferable to blocking the caller.
func (t *Table) WithContext(key uint64, fn func(*Context)) bool {
	if !t.mu.lockTimeout(t.lockTimeout) {
		return false
	}
	defer t.mu.unlock()

	c, exists := t.entries[key]
	if !exists {
		return false
	}
	fn(c)
	return true
}

// Remove deletes the entry for key and reports whether it existed. After
// Remove returns, no callback can reach the context and the requester may
// read it without synchronization.
func (t *Table) Remove(key uint64) bool {
	t.mu.lock()
	defer t.mu.unlock()

	_, exists := t.entries[key]
	delete(t.entries, key)
	return exists
}

// Len returns the number of in-flight entries.
func (t *Table) Len() int {
	t.mu.lock()
	defer t.mu.unlock()
	return len(t.entries)
}
