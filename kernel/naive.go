package kernel

import (
	"time"

	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

// Naive is the two-pointer linear-scan kernel: no exponential search,
// just a merge-walk over both lists advancing whichever side has the
// smaller key.
type Naive struct{}

// Intersect runs one phase of the two-phase intersection.
//
// Phase First matches words with the same (doc_id, group) key and
// computes (lhs.values << lhsLen) & rhs.values; whenever lhs's shifted-
// out high bits are non-empty (lhsVal & msbMask != 0) it also emits a
// carry word at (doc_id, group+1) carrying lhs's own, unshifted value
// bitmap, to be resolved one group later by phase Second.
//
// Phase Second matches carry words (already at group+1) against rhs and
// computes rotl16(lhs.values, lhsLen) & lsbMask & rhs.values.
func (Naive) Intersect(lhs, rhs roaringish.List, lhsLen uint16, phase Phase, s *stats.Query) (result, carry roaringish.List) {
	start := time.Now()
	mm, lm := msbMask(lhsLen), lsbMask(lhsLen)

	result = getScratch(min(len(lhs), len(rhs)))
	if phase == First {
		carry = getScratch(len(lhs)/4 + 1)
	}

	i, j := 0, 0
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
			j++
		default:
			if phase == First && lhsVal&mm > 0 {
				carry = append(carry, roaringish.WithValues(lhsKey+roaringish.AddOneGroup, lhsVal))
			}
			i++
		}
	}

	if phase == First {
		stats.AddMicros(&s.FirstIntersect, time.Since(start).Microseconds())
	} else {
		stats.AddMicros(&s.SecondIntersect, time.Since(start).Microseconds())
	}
	return result, carry
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
