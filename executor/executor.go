// Package executor implements the query executor: given the planner's
// groups and their posting lists, it selects a seed adjacent pair and
// expands outward, re-intersecting against the shorter boundary list at
// each step, to compute the final set of matching document ids.
package executor

import (
	"errors"

	"github.com/blazeq/phrasedex/kernel"
	"github.com/blazeq/phrasedex/planner"
	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

// ErrEmptyIntersection is returned when an intermediate (or final)
// intersection yields no results -- the phrase cannot match any
// document.
var ErrEmptyIntersection = errors.New("executor: empty intersection")

// Run computes the document ids matching the phrase described by
// groups, given each group's posting list in postings. groups must be
// non-empty and in left-to-right query order; an empty groups slice is
// the caller's responsibility to reject earlier as EmptyQuery.
func Run(groups []planner.Group, postings map[planner.GroupKey]roaringish.List, s *stats.Query) ([]uint32, error) {
	if len(groups) == 1 {
		list := postings[groups[0].Key]
		if len(list) == 0 {
			return nil, ErrEmptyIntersection
		}
		return kernel.GetDocIDs(list, s), nil
	}

	lo, hi := seedPair(groups, postings)

	width := func(g planner.Group) uint16 {
		return uint16(g.Key.End - g.Key.Start)
	}

	result := kernel.Intersect(postings[groups[lo].Key], postings[groups[hi].Key], width(groups[lo]), s)
	if len(result) == 0 {
		return nil, ErrEmptyIntersection
	}
	// result's bit values are always copied from whichever operand most
	// recently played the rhs role in an Intersect call -- here, hi.
	// anchorStart tracks that operand's own Start, the frame every
	// subsequent lhsLen is computed relative to.
	anchorStart := groups[hi].Key.Start

	for lo > 0 || hi < len(groups)-1 {
		expandLeft := false
		switch {
		case lo == 0:
			expandLeft = false
		case hi == len(groups)-1:
			expandLeft = true
		default:
			leftList := postings[groups[lo-1].Key]
			rightList := postings[groups[hi+1].Key]
			expandLeft = len(leftList) <= len(rightList)
		}

		superseded := result
		if expandLeft {
			lo--
			lhsLen := uint16(anchorStart - groups[lo].Key.Start)
			result = kernel.Intersect(postings[groups[lo].Key], result, lhsLen, s)
			// result is rhs in this call, so its frame (anchorStart) is
			// unchanged: it still holds hi's own bit values.
		} else {
			hi++
			lhsLen := uint16(groups[hi].Key.Start - anchorStart)
			result = kernel.Intersect(result, postings[groups[hi].Key], lhsLen, s)
			// postings[groups[hi].Key] is rhs here, so the frame moves
			// to the new hi group's own Start.
			anchorStart = groups[hi].Key.Start
		}
		// superseded was read in full by the Intersect call above and
		// is never referenced again; its backing array can be reused.
		kernel.Release(superseded)

		if len(result) == 0 {
			return nil, ErrEmptyIntersection
		}
	}

	docIDs := kernel.GetDocIDs(result, s)
	kernel.Release(result)
	return docIDs, nil
}

// seedPair picks the adjacent group pair with the smallest combined
// posting length, the cheapest possible starting intersection. Ties
// prefer the later pair: <= rather than <, so a tie overwrites the
// previous candidate.
func seedPair(groups []planner.Group, postings map[planner.GroupKey]roaringish.List) (lo, hi int) {
	best := -1
	lo, hi = 0, 1
	for i := 0; i+1 < len(groups); i++ {
		combined := len(postings[groups[i].Key]) + len(postings[groups[i+1].Key])
		if best == -1 || combined <= best {
			best = combined
			lo, hi = i, i+1
		}
	}
	return lo, hi
}
