// Package phrasedex is an exact phrase search engine built on a packed
// positional posting format ("Roaringish"): every token occurrence is
// stored as a 64-bit word combining a document id, a 16-position
// group, and a bitmap of which of those 16 positions the token occurs
// at, letting phrase queries be answered with bitwise shifts and
// rotations instead of per-position scans.
package phrasedex

import (
	"errors"
	"fmt"
)

// Sentinel errors, declared as package-level vars so callers can
// compare with errors.Is. Parameterized failures that need to carry
// extra context (which token, which key, which document) are typed
// structs below instead, matched with errors.As.
var (
	ErrEmptyQuery                  = errors.New("phrasedex: empty query")
	ErrMergeAndMinimizeNotPossible = errors.New("phrasedex: merge and minimize not possible")
	ErrEmptyIntersection           = errors.New("phrasedex: empty intersection")
	ErrInternal                    = errors.New("phrasedex: internal error")
)

// TokenNotFoundError is returned when a query token (or required
// common window) has no posting list in the index at all.
type TokenNotFoundError struct {
	Token string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("phrasedex: token %q not found", e.Token)
}

// KeyNotFoundError is returned by a key/value store lookup that misses.
type KeyNotFoundError struct {
	Key string
	DB  string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("phrasedex: key %q not found in %s", e.Key, e.DB)
}

// DocumentNotFoundError is returned when a resolved document id has no
// stored record.
type DocumentNotFoundError struct {
	DocID uint32
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("phrasedex: document %d not found", e.DocID)
}
