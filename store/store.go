package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.etcd.io/bbolt"

	"github.com/blazeq/phrasedex/roaringish"
)

var (
	bucketMain         = []byte("main")
	bucketTokenOffsets = []byte("token_to_offsets")
	bucketDocuments    = []byte("doc_id_to_document")
	keyCommonTokens    = []byte("common_tokens")
)

// ErrKeyNotFound is returned when a lookup key has no entry in the
// named bucket.
type ErrKeyNotFound struct {
	Key string
	DB  string
}

func (e *ErrKeyNotFound) Error() string {
	return fmt.Sprintf("store: key %q not found in %s", e.Key, e.DB)
}

// ErrDocumentNotFound is returned by Document/Documents for a document
// id with no stored record.
type ErrDocumentNotFound struct{ DocID uint32 }

func (e *ErrDocumentNotFound) Error() string {
	return fmt.Sprintf("store: document %d not found", e.DocID)
}

// ErrInternal flags an assertion a correctly built index should never
// violate: a posting offset or length not divisible by 8, or a range
// that falls outside the mapped posting file. Its presence means the
// index files are corrupt or mismatched, not that the query was bad.
var ErrInternal = errors.New("store: internal error")

// Store is the read-only, open-for-query view of a built index: a
// memory-mapped posting file plus the bbolt-backed key/value store
// (token offsets, common tokens, documents). Every read goes through a
// fresh MVCC read transaction per call, released as soon as the call
// returns -- no lock is ever held across intersection work.
type Store struct {
	db      *bbolt.DB
	posting *postingFile
}

// Open opens a previously built index directory read-only.
func Open(dbPath, postingPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0o444, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("store: open key/value store: %w", err)
	}
	pf, err := openPostingFile(postingPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, posting: pf}, nil
}

// Close releases the posting file mapping and the key/value store.
func (s *Store) Close() error {
	err := s.posting.close()
	if cerr := s.db.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("store: close key/value store: %w", cerr)
	}
	return err
}

// PostingList resolves token to its posting list. Returns
// (nil, false, nil) when the token was never indexed.
func (s *Store) PostingList(token string) (roaringish.List, bool, error) {
	var begin, length uint64
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTokenOffsets)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(token))
		if v == nil {
			return nil
		}
		if len(v) != 16 {
			return fmt.Errorf("%w: malformed offset record for %q (%d bytes, want 16)", ErrInternal, token, len(v))
		}
		begin = binary.LittleEndian.Uint64(v[0:8])
		length = binary.LittleEndian.Uint64(v[8:16])
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	list, err := s.posting.slice(begin, length)
	if err != nil {
		return nil, false, err
	}
	return list, true, nil
}

// CommonTokens returns the set of precomputed multi-token window spans
// written at build time. Finalize always writes this key, even for a
// corpus with no common windows at all, so a missing key here means
// the index was never finalized or its files don't match -- required
// metadata the caller cannot recover from, so it is surfaced as
// ErrKeyNotFound rather than treated as an empty set.
func (s *Store) CommonTokens() (map[string]struct{}, error) {
	set := make(map[string]struct{})
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMain)
		if b == nil {
			return &ErrKeyNotFound{Key: string(keyCommonTokens), DB: string(bucketMain)}
		}
		v := b.Get(keyCommonTokens)
		if v == nil {
			return &ErrKeyNotFound{Key: string(keyCommonTokens), DB: string(bucketMain)}
		}
		return decodeStringSet(v, set)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Document returns the opaque record stored for docID.
func (s *Store) Document(docID uint32) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b == nil {
			return &ErrDocumentNotFound{DocID: docID}
		}
		v := b.Get(docKey(docID))
		if v == nil {
			return &ErrDocumentNotFound{DocID: docID}
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Documents resolves several document ids in one read transaction.
func (s *Store) Documents(ids []uint32) ([][]byte, error) {
	out := make([][]byte, len(ids))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		for i, id := range ids {
			if b == nil {
				return &ErrDocumentNotFound{DocID: id}
			}
			v := b.Get(docKey(id))
			if v == nil {
				return &ErrDocumentNotFound{DocID: id}
			}
			out[i] = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func docKey(docID uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], docID)
	return b[:]
}

func decodeStringSet(data []byte, into map[string]struct{}) error {
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("store: decoding common tokens: %w", err)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("store: decoding common tokens: %w", err)
		}
		into[string(buf)] = struct{}{}
	}
	return nil
}
