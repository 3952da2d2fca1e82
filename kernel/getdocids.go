package kernel

import (
	"time"

	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
)

// GetDocIDs extracts the distinct, ascending document ids referenced by
// a posting list. A single document can span several packed words (one
// per position group), so the scalar pass below can append the same
// doc id twice in a row when two consecutive words share a document but
// differ in group; rather than special-case that at emission time, it
// dedups in one adjacent-compaction pass afterward, mirroring how the
// reference scalar implementation resolves the same double-write.
func GetDocIDs(l roaringish.List, s *stats.Query) []uint32 {
	start := time.Now()
	defer func() {
		stats.AddMicros(&s.GetDocIDs, time.Since(start).Microseconds())
	}()

	if len(l) == 0 {
		return nil
	}

	raw := make([]uint32, len(l))
	for i, w := range l {
		raw[i] = uint32(roaringish.Doc(w))
	}

	out := raw[:1]
	for _, id := range raw[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
