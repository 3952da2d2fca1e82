// Package stats holds the monotonic, relaxed-atomicity counters a
// query execution updates at each named probe point. Counters are pure
// observers: nothing on the intersection or planning path reads them
// back to make a decision, so plain sync/atomic is enough -- no mutex,
// no ordering guarantee beyond what atomic loads/stores already give.
package stats

import "sync/atomic"

// Query accumulates per-probe-point microsecond totals for a single
// search call. The zero value is ready to use.
type Query struct {
	Tokenize        atomic.Uint64
	Plan            atomic.Uint64
	FirstIntersect  atomic.Uint64
	SecondIntersect atomic.Uint64
	FirstGallop     atomic.Uint64
	SecondGallop    atomic.Uint64
	GetDocIDs       atomic.Uint64
	DocumentLookup  atomic.Uint64
}

// AddMicros adds a duration, expressed in microseconds, to the given
// counter. Callers pass time.Since(start).Microseconds().
func AddMicros(counter *atomic.Uint64, micros int64) {
	if micros < 0 {
		return
	}
	counter.Add(uint64(micros))
}
