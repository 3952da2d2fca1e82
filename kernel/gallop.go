package kernel

import (
	"time"

	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

// Gallop is the exponential-search kernel: used when one operand is
// much longer than the other, it fast-forwards the longer side with
// doubling-step probes instead of a linear scan. Select picks Gallop
// over Naive/Vector8 per phase based on the ratio of operand lengths
// (see FirstGallopThreshold / SecondGallopThreshold).
type Gallop struct{}

func (Gallop) Intersect(lhs, rhs roaringish.List, lhsLen uint16, phase Phase, s *stats.Query) (result, carry roaringish.List) {
	start := time.Now()
	mm, lm := msbMask(lhsLen), lsbMask(lhsLen)

	result = getScratch(min(len(lhs), len(rhs)))
	if phase == First {
		carry = getScratch(len(lhs)/4 + 1)
	}

	// Pre-scan: fast-forward the longer side past keys smaller than
	// the other side's first key, then align the resulting index down
	// to a multiple of 8 to preserve the 8-word/64-byte alignment the
	// vectorized kernel depends on. When it is lhs being fast-forwarded,
	// every word it skips over must still contribute its msb-carry --
	// Naive never skips a word without checking it, so Gallop has to
	// emit the same carries despite skipping several at once.
	i, j := 0, 0
	if len(lhs) > 0 && len(rhs) > 0 {
		if len(lhs) > len(rhs) {
			newI := alignDown8(gallopSearch(lhs, roaringish.Key(rhs[0])))
			if phase == First {
				carry = emitCarries(carry, lhs, i, newI, mm)
			}
			i = newI
		} else {
			j = alignDown8(gallopSearch(rhs, roaringish.Key(lhs[0])))
		}
	}

	for i < len(lhs) && j < len(rhs) {
		lhsKey := roaringish.Key(lhs[i])
		lhsVal := roaringish.Values(lhs[i])
		rhsKey := roaringish.Key(rhs[j])
		rhsVal := roaringish.Values(rhs[j])

		switch {
		case lhsKey == rhsKey:
			if phase == First {
				intersection := (lhsVal << lhsLen) & rhsVal
				if intersection != 0 {
					result = append(result, roaringish.WithValues(lhsKey, intersection))
				}
				if lhsVal&mm > 0 {
					carry = append(carry, roaringish.WithValues(lhsKey+roaringish.AddOneGroup, lhsVal))
				}
			} else {
				intersection := rotl16(lhsVal, lhsLen) & lm & rhsVal
				if intersection != 0 {
					result = append(result, roaringish.WithValues(lhsKey, intersection))
				}
			}
			i++
			j++
		case lhsKey > rhsKey:
			j = gallopAdvance(rhs, j, lhsKey)
		default:
			newI := gallopAdvance(lhs, i, rhsKey)
			if phase == First {
				carry = emitCarries(carry, lhs, i, newI, mm)
			}
			i = newI
		}
	}

	if phase == First {
		stats.AddMicros(&s.FirstGallop, time.Since(start).Microseconds())
	} else {
		stats.AddMicros(&s.SecondGallop, time.Since(start).Microseconds())
	}
	return result, carry
}

// emitCarries appends a msb-carry word for every word in lhs[from:to)
// whose shifted-out high bits are non-empty, the same per-word check
// Naive performs inline one word at a time -- used wherever Gallop
// skips a whole range of lhs words in a single jump instead of
// visiting each one.
func emitCarries(carry, lhs roaringish.List, from, to int, mm uint16) roaringish.List {
	for k := from; k < to; k++ {
		val := roaringish.Values(lhs[k])
		if val&mm > 0 {
			carry = append(carry, roaringish.WithValues(roaringish.Key(lhs[k])+roaringish.AddOneGroup, val))
		}
	}
	return carry
}

// gallopSearch returns the index of the first word in l whose key is >=
// target, using exponential probing followed by a binary search over
// the bracketed range.
func gallopSearch(l roaringish.List, target uint64) int {
	if len(l) == 0 || roaringish.Key(l[0]) >= target {
		return 0
	}
	lo, step := 0, 1
	for lo+step < len(l) && roaringish.Key(l[lo+step]) < target {
		lo += step
		step *= 2
	}
	hi := lo + step
	if hi > len(l) {
		hi = len(l)
	}
	return lo + binarySearchKey(l[lo:hi], target)
}

// gallopAdvance advances index i in l past all words with key < target,
// via gallopSearch, and returns the new index (at least i+1 progress is
// guaranteed by gallopSearch's precondition that l[i] < target).
func gallopAdvance(l roaringish.List, i int, target uint64) int {
	return i + gallopSearch(l[i:], target)
}

// binarySearchKey returns the index of the first word in l with key >=
// target (l is assumed sorted ascending by key).
func binarySearchKey(l roaringish.List, target uint64) int {
	lo, hi := 0, len(l)
	for lo < hi {
		mid := (lo + hi) / 2
		if roaringish.Key(l[mid]) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// alignDown8 rounds i down to the nearest multiple of 8, preserving the
// 64-byte/8-word SIMD alignment the vectorized kernel relies on.
func alignDown8(i int) int {
	return i / 8 * 8
}

const (
	// FirstGallopThreshold is the length-ratio at or above which phase
	// First prefers Gallop over Naive.
	FirstGallopThreshold = 650
	// SecondGallopThreshold is the length-ratio at or above which phase
	// Second prefers Gallop over Naive. Lower than FirstGallopThreshold
	// because carry lists from phase First are typically much shorter
	// than the original operands, making exponential search pay off
	// sooner.
	SecondGallopThreshold = 120
)
