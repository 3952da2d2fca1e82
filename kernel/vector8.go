package kernel

import (
	"time"

	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

// Vector8 is the synthesized stand-in for a native 8-lane SIMD
// 2-intersect instruction. A real AVX-512-class kernel compares two
// 8-word batches against each other using a dedicated hardware compare
// instruction; without access to that instruction in portable Go,
// Vector8 reconstructs the same result in plain scalar Go: it takes a
// window of up to 8 rhs words (fewer at the tail of rhs) and compares
// the current lhs key against each lane in turn, skipping the whole
// window when its last key is still below the lhs key. No rotated
// compares or hardware SIMD are used. The result is bit-identical to
// Naive on every input; the batch
// windowing only changes how many comparisons are issued per pointer
// advance, never which words end up in the output.
type Vector8 struct{}

const laneWidth = 8

func (Vector8) Intersect(lhs, rhs roaringish.List, lhsLen uint16, phase Phase, s *stats.Query) (result, carry roaringish.List) {
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

		windowEnd := j + laneWidth
		if windowEnd > len(rhs) {
			windowEnd = len(rhs)
		}
		window := rhs[j:windowEnd]

		matchIdx := -1
		for lane := 0; lane < len(window); lane++ {
			if roaringish.Key(window[lane]) == lhsKey {
				matchIdx = lane
				break
			}
		}

		switch {
		case matchIdx >= 0:
			rhsVal := roaringish.Values(window[matchIdx])
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
			j += matchIdx + 1
		case len(window) > 0 && roaringish.Key(window[len(window)-1]) < lhsKey:
			// Every key in this window sorts before lhsKey; none of
			// them can match any remaining lhs word, so skip the
			// whole window at once.
			j = windowEnd
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
