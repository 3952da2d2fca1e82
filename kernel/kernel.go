// Package kernel implements the two-phase phrase intersection kernels:
// naive, galloping, and an 8-word batched variant written in portable
// scalar Go (the stand-in for a native SIMD 2-intersect instruction, see
// Vector8). Select and Intersect choose between them.
package kernel

import (
	"github.com/blazeq/phrasedex/internal/arena"
	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

// scratch pools the result/carry backing arrays allocated per
// intersection call. A query's intermediate lists are read once, fed
// into the next kernel call, and discarded; scratch lets that discarded
// backing array get reused by a later call instead of going straight to
// the garbage collector.
var scratch arena.Uint64Pool

// getScratch returns a zero-length List with capacity at least n,
// reusing a buffer a previous call released when one is available.
func getScratch(n int) roaringish.List {
	return roaringish.List(scratch.Get(n))
}

// Release returns l's backing array to scratch for reuse by a later
// kernel call. Callers must only release a list once nothing -- not a
// returned result, not a caller still holding a reference -- depends on
// its contents anymore.
func Release(l roaringish.List) {
	if l != nil {
		scratch.Put([]uint64(l))
	}
}

// Phase selects which half of the two-phase intersection a kernel call
// performs. First is the intra-group shift phase; Second is the
// inter-group carry resolution phase.
type Phase bool

const (
	First  Phase = true
	Second Phase = false
)

// msbMask/lsbMask are the bit masks used to detect and resolve carries
// across a group boundary, keyed by the left-hand phrase offset.
func msbMask(lhsLen uint16) uint16 {
	return ^(uint16(0xFFFF) >> lhsLen)
}

func lsbMask(lhsLen uint16) uint16 {
	return ^(uint16(0xFFFF) << lhsLen)
}

// rotl16 rotates a 16-bit value left by n bits.
func rotl16(v uint16, n uint16) uint16 {
	n &= 15
	return (v << n) | (v >> (16 - n))
}

// Kernel computes one phase of the two-phase intersection between two
// aligned posting lists. lhsLen is the left-hand phrase's token offset
// (the number of positions rhs must be shifted, or rotated, relative to
// lhs). For Second, lhs is the set of msb-carry words produced by a
// prior First pass.
type Kernel interface {
	// Intersect performs one phase and returns: the primary result
	// words (phase output proper) and, when phase == First, the
	// msb-carry words to feed into phase Second one group later.
	Intersect(lhs, rhs roaringish.List, lhsLen uint16, phase Phase, s *stats.Query) (result, carry roaringish.List)
}
