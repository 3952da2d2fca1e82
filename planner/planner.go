// Package planner implements the token-merge planner: given a tokenized
// phrase query, it partitions the token sequence into a minimal-cost
// sequence of lookup groups, where a group of width > 1 stands for a
// precomputed multi-token posting (a "common" window written at build
// time) and a group of width 1 stands for an ordinary single-token
// posting looked up and intersected at query time.
package planner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotPossible is returned when no valid partition exists -- some
// token in the query has an empty or missing posting list, so no
// window covering it, of any width, can ever contribute to a result.
var ErrNotPossible = errors.New("planner: merge and minimize not possible")

// MaxWindowLen is the largest multi-token window the build side ever
// precomputes a posting for.
const MaxWindowLen = 3

// GroupKey identifies a contiguous token span [Start, End) chosen by
// the planner as one lookup unit.
type GroupKey struct {
	Start, End int
}

// Group is one lookup unit of the chosen partition, in left-to-right
// order.
type Group struct {
	Key  GroupKey
	Text string // the space-joined token text used as the lookup key
}

// CommonSet reports whether a token or a multi-token window has a
// precomputed posting available. A single token is always assumed
// fetchable (FetchFunc will report TokenNotFound if it is not); width>1
// windows must be flagged common before the planner will ever consider
// them, since the build side only precomputes a bounded, curated set of
// them.
type CommonSet interface {
	Contains(span string) bool
}

// FetchFunc resolves a lookup key (a single token, or a space-joined
// multi-token window already confirmed common) to its posting length.
// found is false when the key has no entry at all.
type FetchFunc func(key string) (length int, found bool, err error)

// JoinSpan renders tokens[i:i+w]'s text, space-joined, the same way the
// build side names a precomputed multi-token window.
func JoinSpan(tokens []string, i, w int) string {
	return strings.Join(tokens[i:i+w], " ")
}

type planState struct {
	tokens []string
	common CommonSet
	fetch  FetchFunc

	costCache map[[2]int]int
	err       error

	score  []int // score[i] = min cost to cover tokens[i:n]
	width  []int // width chosen at i, 0 if unreachable
}

const costInfinite = 1 << 30

// Plan computes the minimal-cost left-to-right partition of tokens into
// lookup groups. tokens must be non-empty (callers return EmptyQuery
// earlier for a zero-token query, per spec). Returns the chosen groups
// in order; it does not return their postings. Plan calls fetch itself
// while costing, so a caller that then loads each group's posting
// looks the same keys up a second time.
func Plan(tokens []string, common CommonSet, fetch FetchFunc) ([]Group, error) {
	n := len(tokens)
	if n == 0 {
		return nil, nil
	}

	st := &planState{
		tokens:    tokens,
		common:    common,
		fetch:     fetch,
		costCache: make(map[[2]int]int),
		score:     make([]int, n+1),
		width:     make([]int, n),
	}
	for i := range st.score {
		st.score[i] = costInfinite
	}
	st.score[n] = 0

	for i := n - 1; i >= 0; i-- {
		maxW := MaxWindowLen
		if rem := n - i; maxW > rem {
			maxW = rem
		}
		best := costInfinite
		bestW := 0
		// Iterate widths high to low so that on a tie the wider window
		// wins -- fewer groups means fewer runtime intersections.
		for w := maxW; w >= 1; w-- {
			if i+w > n {
				continue
			}
			c, ok := st.cost(i, w)
			if !ok {
				continue
			}
			total := c + st.score[i+w]
			if total < best {
				best = total
				bestW = w
			}
		}
		st.score[i] = best
		st.width[i] = bestW
	}

	if st.err != nil {
		return nil, st.err
	}
	if st.score[0] >= costInfinite {
		return nil, ErrNotPossible
	}

	var groups []Group
	for i := 0; i < n; {
		w := st.width[i]
		if w == 0 {
			return nil, ErrNotPossible
		}
		key := GroupKey{Start: i, End: i + w}
		groups = append(groups, Group{Key: key, Text: JoinSpan(tokens, i, w)})
		i += w
	}
	return groups, nil
}

func (st *planState) cost(i, w int) (int, bool) {
	key := [2]int{i, w}
	if c, ok := st.costCache[key]; ok {
		return c, c != costInfinite
	}
	if w > 1 && !st.common.Contains(JoinSpan(st.tokens, i, w)) {
		st.costCache[key] = costInfinite
		return 0, false
	}
	length, found, err := st.fetch(JoinSpan(st.tokens, i, w))
	if err != nil {
		if st.err == nil {
			st.err = fmt.Errorf("planner: fetching span [%d:%d): %w", i, i+w, err)
		}
		st.costCache[key] = costInfinite
		return 0, false
	}
	if !found || length == 0 {
		st.costCache[key] = costInfinite
		return 0, false
	}
	st.costCache[key] = length
	return length, true
}
