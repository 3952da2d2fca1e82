package roaringish

import "fmt"

// List is a sorted sequence of packed words: strictly ascending by
// (doc_id, group) key, with every word's value bitmap non-zero. It is
// the in-memory and on-disk representation of one token's posting list.
type List []uint64

// NewAligned allocates a List with room for n words, over-allocated so
// the backing array starts on a 64-byte boundary -- matching the
// on-disk blob alignment contract in the posting store.
func NewAligned(n int) List {
	const align = 8 // 8 uint64s = 64 bytes
	raw := make([]uint64, n+align)
	off := 0
	if addr := uintptrOf(raw); addr%64 != 0 {
		off = int((64 - addr%64) / 8)
	}
	return List(raw[off : off+n : off+n])
}

// Push appends every position in positions (already sorted ascending,
// as produced by a tokenizer walking a document left to right) for doc
// to the list, grouping consecutive positions that share a group field
// into a single packed word.
func (l *List) Push(doc DocID, positions []Position) {
	if len(positions) == 0 {
		return
	}
	group, bit := gv(positions[0])
	word := pack(doc, group, bit)
	for _, pos := range positions[1:] {
		g, b := gv(pos)
		if g == group {
			word |= packValue(b)
			continue
		}
		*l = append(*l, word)
		group, bit = g, b
		word = pack(doc, group, bit)
	}
	*l = append(*l, word)
}

// SizeBytes is the number of bytes the list occupies when written to
// the posting file, 8 bytes per word.
func (l List) SizeBytes() int {
	return len(l) * 8
}

// Validate checks the universal posting-list invariants: strictly
// ascending (doc_id, group) keys and non-zero value bitmaps throughout.
func (l List) Validate() error {
	for i, w := range l {
		if unpackValues(w) == 0 {
			return fmt.Errorf("roaringish: word %d has empty value bitmap", i)
		}
		if i == 0 {
			continue
		}
		if clearValues(l[i-1]) >= clearValues(w) {
			return fmt.Errorf("roaringish: word %d key does not strictly follow word %d", i, i-1)
		}
	}
	return nil
}

// All iterates the list's (doc_id, group, value_bitmap) triples in
// order.
func (l List) All(yield func(doc DocID, group uint16, bitmap uint16) bool) {
	for _, w := range l {
		if !yield(unpackDocID(w), unpackGroup(w), unpackValues(w)) {
			return
		}
	}
}
