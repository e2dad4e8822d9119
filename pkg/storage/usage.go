package storage

import "sync/atomic"

// UsageTracker counts the bytes a backend instance has resident on disk.
// One tracker is shared by every handle the backend produces: writers add
// bytes as they flush, cleanup guards and deletes subtract them.
//
// The counter is advisory and eventually consistent. Updates are atomic,
// but there is no cross-operation atomicity with filesystem state: a
// concurrent List and Delete can observe a stale view, and interleaved
// partial flushes and deletes can transiently under- or overshoot. The
// value converges once in-flight operations settle, which is why it is
// signed rather than an unsigned "cannot go negative" ledger.
type UsageTracker struct {
	bytes atomic.Int64
}

// Increment records n bytes written to disk.
func (u *UsageTracker) Increment(n uint64) {
	u.bytes.Add(int64(n))
}

// Decrement records n bytes removed from disk.
func (u *UsageTracker) Decrement(n uint64) {
	u.bytes.Add(-int64(n))
}

// Read returns the current byte count.
func (u *UsageTracker) Read() int64 {
	return u.bytes.Load()
}
