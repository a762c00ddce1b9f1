// Package correlate matches asynchronous device-stack callbacks to the
// synchronous requests that triggered them.
//
// Each in-flight request owns a Context: an ordered accumulator for decoded
// report items plus a single-fire completion channel. Contexts are published
// in a Table keyed by node id so the stack's callback thread can find them.
//
// The table lock is held only for single map operations and its acquisition
// is bounded: a callback that cannot take the lock in time drops its update
// instead of stalling the stack's own thread. The requesting goroutine waits
// on the context's completion channel holding no lock at all.
//
// Entries are transient. They are registered immediately before command
// submission and removed by the requester on every exit path, so a callback
// arriving after a timeout simply misses its lookup and becomes a no-op.
package correlate
