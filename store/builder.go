package store

import (
	"container/heap"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/blazeq/phrasedex/roaringish"
)

// Builder is the single-writer build-time interface: it accepts one or
// more posting runs per token (as would arrive from separate ingestion
// batches), merges each token's runs in document-id order, and writes
// the result to the posting file at a 64-byte-aligned offset, recording
// that offset in the key/value store.
//
// A Builder is not safe for concurrent use; the engine's concurrency
// model is single-writer, many-reader.
type Builder struct {
	db          *bbolt.DB
	postingPath string
	postingFile *os.File
	offset      uint64

	runs   map[string][]roaringish.List
	common map[string]struct{}
}

// NewBuilder creates (or truncates) a fresh index at dbPath/postingPath.
func NewBuilder(dbPath, postingPath string) (*Builder, error) {
	db, err := bbolt.Open(dbPath, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open key/value store for build: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMain, bucketTokenOffsets, bucketDocuments} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initializing buckets: %w", err)
	}

	f, err := os.Create(postingPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create posting file: %w", err)
	}

	return &Builder{
		db:          db,
		postingPath: postingPath,
		postingFile: f,
		runs:        make(map[string][]roaringish.List),
		common:      make(map[string]struct{}),
	}, nil
}

// MaxTokenBytes is the longest lookup key (a single token or a
// space-joined multi-token window) the posting file will ever hold.
// Longer keys are silently dropped at build time; a query containing
// one then resolves as an ordinary missing token (TokenNotFoundError),
// not a build or I/O error.
const MaxTokenBytes = 511

// PutRun appends one ingestion batch's posting run for token. Multiple
// runs for the same token are merged, in the order added, at Finalize.
// Tokens longer than MaxTokenBytes are dropped.
func (b *Builder) PutRun(token string, run roaringish.List) {
	if len(run) == 0 || len(token) > MaxTokenBytes {
		return
	}
	b.runs[token] = append(b.runs[token], run)
}

// MarkCommon flags a multi-token window span as a precomputed "common"
// window the planner is allowed to pick as a single lookup group.
// Spans longer than MaxTokenBytes are dropped, matching PutRun -- such
// a span never has a posting to flag common in the first place.
func (b *Builder) MarkCommon(span string) {
	if len(span) > MaxTokenBytes {
		return
	}
	b.common[span] = struct{}{}
}

// PutDocument stores docID's opaque record.
func (b *Builder) PutDocument(docID uint32, data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put(docKey(docID), data)
	})
}

// Finalize performs the N-way merge of every token's accumulated runs,
// writes each merged list to the posting file at a 64-byte-aligned
// offset, records the (offset, length) pair in the token_to_offsets
// bucket, writes the common-tokens set, and closes both files.
func (b *Builder) Finalize() error {
	tokens := make([]string, 0, len(b.runs))
	for t := range b.runs {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)

	err := b.db.Update(func(tx *bbolt.Tx) error {
		offBucket := tx.Bucket(bucketTokenOffsets)
		for _, token := range tokens {
			merged := mergeRuns(b.runs[token])
			if err := b.writePosting(offBucket, token, merged); err != nil {
				return err
			}
		}

		encoded := encodeStringSet(b.common)
		return tx.Bucket(bucketMain).Put(keyCommonTokens, encoded)
	})
	if err != nil {
		b.postingFile.Close()
		b.db.Close()
		return err
	}

	if err := b.postingFile.Close(); err != nil {
		b.db.Close()
		return fmt.Errorf("store: closing posting file: %w", err)
	}
	return b.db.Close()
}

func (b *Builder) writePosting(offBucket *bbolt.Bucket, token string, list roaringish.List) error {
	length := uint64(list.SizeBytes())
	if length == 0 {
		return nil
	}
	padded := alignUp(b.offset) - b.offset
	if padded > 0 {
		if _, err := b.postingFile.Write(make([]byte, padded)); err != nil {
			return fmt.Errorf("store: padding posting file: %w", err)
		}
		b.offset += padded
	}

	buf := make([]byte, length)
	for i, w := range list {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	if _, err := b.postingFile.Write(buf); err != nil {
		return fmt.Errorf("store: writing posting for %q: %w", token, err)
	}

	record := make([]byte, 16)
	binary.LittleEndian.PutUint64(record[0:8], b.offset)
	binary.LittleEndian.PutUint64(record[8:16], length)
	if err := offBucket.Put([]byte(token), record); err != nil {
		return fmt.Errorf("store: recording offset for %q: %w", token, err)
	}

	b.offset += length
	return nil
}

// mergeRuns performs an N-way merge of a token's per-batch posting
// runs, each individually sorted ascending by (doc_id, group) key, into
// a single sorted, deduplicated-key run via a min-heap over the runs'
// current heads -- the standard external-sort merge step, here over
// in-memory runs rather than temp files.
func mergeRuns(runs []roaringish.List) roaringish.List {
	runs = dropEmpty(runs)
	if len(runs) == 0 {
		return nil
	}
	if len(runs) == 1 {
		return runs[0]
	}

	h := &runHeap{}
	heap.Init(h)
	for i, r := range runs {
		heap.Push(h, &runCursor{list: r, idx: 0, run: i})
	}

	total := 0
	for _, r := range runs {
		total += len(r)
	}
	// 64-byte aligned even in memory, matching the on-disk blob
	// alignment writePosting later pads to.
	out := roaringish.NewAligned(total)[:0]

	for h.Len() > 0 {
		top := (*h)[0]
		word := top.list[top.idx]
		if len(out) > 0 && roaringish.Key(out[len(out)-1]) == roaringish.Key(word) {
			merged := roaringish.WithValues(roaringish.Key(word), roaringish.Values(out[len(out)-1])|roaringish.Values(word))
			out[len(out)-1] = merged
		} else {
			out = append(out, word)
		}
		top.idx++
		if top.idx >= len(top.list) {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}
	}
	return out
}

func dropEmpty(runs []roaringish.List) []roaringish.List {
	out := runs[:0]
	for _, r := range runs {
		if len(r) > 0 {
			out = append(out, r)
		}
	}
	return out
}

type runCursor struct {
	list roaringish.List
	idx  int
	run  int
}

type runHeap []*runCursor

func (h runHeap) Len() int { return len(h) }
func (h runHeap) Less(i, j int) bool {
	ki := roaringish.Key(h[i].list[h[i].idx])
	kj := roaringish.Key(h[j].list[h[j].idx])
	if ki != kj {
		return ki < kj
	}
	return h[i].run < h[j].run
}
func (h runHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *runHeap) Push(x any)   { *h = append(*h, x.(*runCursor)) }
func (h *runHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func encodeStringSet(set map[string]struct{}) []byte {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf []byte
	for _, k := range keys {
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(len(k)))
		buf = append(buf, n[:]...)
		buf = append(buf, k...)
	}
	return buf
}
