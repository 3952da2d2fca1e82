// Package arena provides per-query scratch buffer pooling, the Go
// analogue of a per-query bump allocator: queries are read-only and run
// concurrently, so instead of one arena reset per query we hand out
// reusable backing slices from a sync.Pool and return them when the
// query finishes.
package arena

import "sync"

// Uint64Pool hands out []uint64 scratch slices sized at least to a
// caller's request, recycling the backing array between queries.
type Uint64Pool struct {
	pool sync.Pool
}

// Get returns a slice with length 0 and capacity at least n, reusing a
// previously released buffer when one of sufficient capacity is
// available.
func (p *Uint64Pool) Get(n int) []uint64 {
	if v := p.pool.Get(); v != nil {
		buf := v.([]uint64)
		if cap(buf) >= n {
			return buf[:0]
		}
	}
	return make([]uint64, 0, n)
}

// Put returns buf to the pool for reuse by a later query.
func (p *Uint64Pool) Put(buf []uint64) {
	p.pool.Put(buf) //nolint:staticcheck // intentional: pool element need not be pointer-sized
}
