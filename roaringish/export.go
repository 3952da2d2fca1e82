package roaringish

// The intersection kernels live in a sibling package and need to pack,
// unpack, and compare words without reaching into roaringish's private
// bit layout. These thin exported wrappers are that seam.

// Key returns the (doc_id, group) portion of a packed word, with the
// value bitmap cleared -- two words compare equal under Key iff they
// refer to the same document and position group.
func Key(word uint64) uint64 { return clearValues(word) }

// Values returns the 16-bit value bitmap of a packed word.
func Values(word uint64) uint16 { return unpackValues(word) }

// Doc returns the document id encoded in a packed word.
func Doc(word uint64) DocID { return unpackDocID(word) }

// Group returns the position group encoded in a packed word.
func Group(word uint64) uint16 { return unpackGroup(word) }

// WithValues returns key (a doc_id|group word, value bits already
// cleared) with its value bitmap replaced by values.
func WithValues(key uint64, values uint16) uint64 {
	return key | uint64(values)
}

// AddOneGroup is the packed-word delta that increments the group field
// by one without disturbing doc_id, used to address "the next group"
// when emitting a carry word.
const AddOneGroup = addOneGroup

// Pack builds a packed word directly from its three fields. Exposed for
// kernels and the store's build path; prefer List.Push for normal
// ingestion.
func Pack(doc DocID, group uint16, values uint16) uint64 {
	return pack(doc, group, values)
}
