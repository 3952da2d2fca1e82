package phrasedex

import "github.com/RoaringBitmap/roaring"

// Set is a boxed document-id result, combinable with other Sets via
// boolean AND/OR/AND-NOT. It supplements exact phrase search with
// ordinary boolean query composition; it carries no score and performs
// no ranking -- combining results is the only operation it offers.
type Set struct {
	bitmap *roaring.Bitmap
}

// NewSet boxes a slice of document ids (as returned by Search) into a
// Set.
func NewSet(docIDs []uint32) *Set {
	b := roaring.New()
	b.AddMany(docIDs)
	return &Set{bitmap: b}
}

// SearchSet runs query and boxes its matching document ids into a Set,
// ready to combine with other searches' results.
func (s *Searcher) SearchSet(query string) (*Set, error) {
	res, err := s.Search(query)
	if err != nil {
		return nil, err
	}
	return NewSet(res.DocIDs), nil
}

// And returns the documents present in both s and other.
func (s *Set) And(other *Set) *Set {
	return &Set{bitmap: roaring.And(s.bitmap, other.bitmap)}
}

// Or returns the documents present in either s or other.
func (s *Set) Or(other *Set) *Set {
	return &Set{bitmap: roaring.Or(s.bitmap, other.bitmap)}
}

// AndNot returns the documents present in s but not in other.
func (s *Set) AndNot(other *Set) *Set {
	return &Set{bitmap: roaring.AndNot(s.bitmap, other.bitmap)}
}

// DocIDs returns the set's document ids in ascending order.
func (s *Set) DocIDs() []uint32 {
	return s.bitmap.ToArray()
}

// Len reports how many documents are in the set.
func (s *Set) Len() int {
	return int(s.bitmap.GetCardinality())
}
