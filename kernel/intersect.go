package kernel

import (
	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

// Select picks a Kernel for a phase, given the ratio between the two
// operand lengths, using the two-threshold scheme: the first phase
// needs a much larger length disparity to justify galloping than the
// second phase, because the second phase's lhs operand (a phase-First
// carry list) is usually already far shorter than a genuine posting
// list. When neither operand dominates enough to gallop, Vector8's
// batched rhs window is picked over the plain scalar merge walk on
// CPUs PreferVector reports as having wide enough SIMD lanes to make
// that bookkeeping pay off; either way the chosen kernel's output is
// bit-identical (see kernel_test.go's equivalence fixtures).
func Select(lhsLen, rhsLen int, phase Phase) Kernel {
	threshold := FirstGallopThreshold
	if phase == Second {
		threshold = SecondGallopThreshold
	}
	longer, shorter := lhsLen, rhsLen
	if shorter > longer {
		longer, shorter = shorter, longer
	}
	if shorter == 0 {
		return Naive{}
	}
	if longer/shorter >= threshold {
		return Gallop{}
	}
	if preferVector() {
		return Vector8{}
	}
	return Naive{}
}

// Intersect runs the full two-phase phrase intersection of lhs and rhs,
// where rhs occurs lhsLen token positions after lhs in the phrase being
// searched for, and returns the merged, doc_id/group-ordered result
// list with any zero-bitmap words dropped.
func Intersect(lhs, rhs roaringish.List, lhsLen uint16, s *stats.Query) roaringish.List {
	k1 := Select(len(lhs), len(rhs), First)
	primary, carryWords := k1.Intersect(lhs, rhs, lhsLen, First, s)

	if len(carryWords) == 0 {
		Release(carryWords)
		return primary
	}

	k2 := Select(len(carryWords), len(rhs), Second)
	carryResult, _ := k2.Intersect(carryWords, rhs, lhsLen, Second, s)

	merged := roaringish.MergeResults(primary, carryResult)
	// primary and carryResult are fully folded into merged now; their
	// backing arrays don't escape and can be handed back for reuse.
	Release(primary)
	Release(carryWords)
	Release(carryResult)
	return merged
}
