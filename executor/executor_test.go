package executor

import (
	"testing"

	"github.com/blazeq/phrasedex/planner"
	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

func pack(doc roaringish.DocID, group, values uint16) uint64 {
	return roaringish.Pack(doc, group, values)
}

func singleton(i int) planner.Group {
	return planner.Group{Key: planner.GroupKey{Start: i, End: i + 1}}
}

func TestRun_SingleGroupReturnsDocIDsDirectly(t *testing.T) {
	g := []planner.Group{singleton(0)}
	postings := map[planner.GroupKey]roaringish.List{
		g[0].Key: {pack(0, 0, 1), pack(7, 0, 1)},
	}

	got, err := Run(g, postings, &stats.Query{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 7 {
		t.Fatalf("Run = %v, want [0 7]", got)
	}
}

func TestRun_SingleGroupEmptyIsEmptyIntersection(t *testing.T) {
	g := []planner.Group{singleton(0)}
	postings := map[planner.GroupKey]roaringish.List{g[0].Key: nil}

	if _, err := Run(g, postings, &stats.Query{}); err != ErrEmptyIntersection {
		t.Fatalf("Run = %v, want ErrEmptyIntersection", err)
	}
}

// TestRun_ThreeGroupsSeedsThenExpandsLeft exercises the seed+expand
// path: "cat", "sat", "mat" at consecutive positions in one document.
// Both adjacent pairs cost 3, so the tie goes to the later pair (groups
// 1 and 2) as the seed, and a single left expansion step adds group 0.
func TestRun_ThreeGroupsSeedsThenExpandsLeft(t *testing.T) {
	groups := []planner.Group{singleton(0), singleton(1), singleton(2)}
	postings := map[planner.GroupKey]roaringish.List{
		groups[0].Key: {pack(0, 0, 0b001)},
		groups[1].Key: {pack(0, 0, 0b010), pack(1, 0, 0b010)}, // doc 1 has no "cat"/"mat"
		groups[2].Key: {pack(0, 0, 0b100)},
	}

	got, err := Run(groups, postings, &stats.Query{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("Run = %v, want [0]", got)
	}
}

func TestRun_EmptyIntermediateIsEmptyIntersection(t *testing.T) {
	groups := []planner.Group{singleton(0), singleton(1), singleton(2)}
	postings := map[planner.GroupKey]roaringish.List{
		groups[0].Key: {pack(0, 0, 0b001)},
		groups[1].Key: {pack(5, 0, 0b010)}, // no shared doc with group 0
		groups[2].Key: {pack(0, 0, 0b100)},
	}

	if _, err := Run(groups, postings, &stats.Query{}); err != ErrEmptyIntersection {
		t.Fatalf("Run = %v, want ErrEmptyIntersection", err)
	}
}

func TestSeedPair_PrefersShortestCombinedLength(t *testing.T) {
	groups := []planner.Group{singleton(0), singleton(1), singleton(2)}
	postings := map[planner.GroupKey]roaringish.List{
		groups[0].Key: make(roaringish.List, 10),
		groups[1].Key: make(roaringish.List, 1),
		groups[2].Key: make(roaringish.List, 1),
	}

	lo, hi := seedPair(groups, postings)
	if lo != 1 || hi != 2 {
		t.Errorf("seedPair = (%d,%d), want (1,2)", lo, hi)
	}
}

func TestSeedPair_TiesPreferLaterPair(t *testing.T) {
	groups := []planner.Group{singleton(0), singleton(1), singleton(2)}
	postings := map[planner.GroupKey]roaringish.List{
		groups[0].Key: make(roaringish.List, 2),
		groups[1].Key: make(roaringish.List, 2),
		groups[2].Key: make(roaringish.List, 2),
	}

	lo, hi := seedPair(groups, postings)
	if lo != 1 || hi != 2 {
		t.Errorf("seedPair = (%d,%d), want (1,2) on a combined-length tie", lo, hi)
	}
}
