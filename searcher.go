package phrasedex

import (
	"errors"
	"fmt"

	"github.com/blazeq/phrasedex/executor"
	"github.com/blazeq/phrasedex/internal/tokenize"
	"github.com/blazeq/phrasedex/planner"
	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/stats"
	"github.com/blazeq/phrasedex/store"
)

// Searcher is the read-only, open-for-query handle onto a built index.
// It is safe for concurrent use: every call opens its own MVCC read
// transaction against the underlying store and never holds a lock
// across intersection work.
type Searcher struct {
	store *store.Store
}

// Open opens a previously built index. dbPath is the bbolt-backed
// key/value store file; postingPath is the flat posting-word blob.
func Open(dbPath, postingPath string) (*Searcher, error) {
	s, err := store.Open(dbPath, postingPath)
	if err != nil {
		return nil, err
	}
	return &Searcher{store: s}, nil
}

// Close releases the searcher's mapped files.
func (s *Searcher) Close() error {
	return s.store.Close()
}

// SearchResult is the outcome of one phrase search: the matching
// document ids, in ascending order, plus the per-probe-point timing
// counters collected along the way.
type SearchResult struct {
	DocIDs []uint32
	Stats  *stats.Query
}

// Search runs an exact phrase query end to end: normalize, plan, then
// execute. An empty or whitespace-only query returns ErrEmptyQuery; a
// query token with no posting list returns a *TokenNotFoundError; a
// query whose token-merge planner can't find any valid partition
// returns ErrMergeAndMinimizeNotPossible; a query whose intersection
// narrows to nothing along the way returns ErrEmptyIntersection.
func (s *Searcher) Search(query string) (*SearchResult, error) {
	st := &stats.Query{}

	tokens, err := tokenize.Normalize(query)
	if err != nil {
		return nil, ErrEmptyQuery
	}
	texts := tokenize.Texts(tokens)

	common, err := s.store.CommonTokens()
	if err != nil {
		return nil, translateStoreErr(err)
	}

	postings := make(map[planner.GroupKey]roaringish.List)
	fetch := func(span string) (int, bool, error) {
		list, found, err := s.store.PostingList(span)
		if err != nil {
			return 0, false, translateStoreErr(err)
		}
		if !found {
			return 0, false, nil
		}
		return len(list), true, nil
	}

	groups, err := planner.Plan(texts, stringSet(common), fetch)
	if err != nil {
		if err == planner.ErrNotPossible {
			if missing := firstMissingToken(s.store, texts); missing != "" {
				return nil, &TokenNotFoundError{Token: missing}
			}
			return nil, ErrMergeAndMinimizeNotPossible
		}
		return nil, fmt.Errorf("phrasedex: %w", err)
	}

	for _, g := range groups {
		list, found, err := s.store.PostingList(g.Text)
		if err != nil {
			return nil, translateStoreErr(err)
		}
		if !found {
			return nil, &TokenNotFoundError{Token: g.Text}
		}
		postings[g.Key] = list
	}

	docIDs, err := executor.Run(groups, postings, st)
	if err != nil {
		return nil, translateExecutorErr(err)
	}

	return &SearchResult{DocIDs: docIDs, Stats: st}, nil
}

func translateExecutorErr(err error) error {
	if err == executor.ErrEmptyIntersection {
		return ErrEmptyIntersection
	}
	return err
}

// translateStoreErr maps the store package's own error kinds onto the
// root package's public taxonomy, preserving the offending key/DB or
// internal detail via fmt.Errorf's %w chaining.
func translateStoreErr(err error) error {
	var keyNotFound *store.ErrKeyNotFound
	if errors.As(err, &keyNotFound) {
		return &KeyNotFoundError{Key: keyNotFound.Key, DB: keyNotFound.DB}
	}
	if errors.Is(err, store.ErrInternal) {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return fmt.Errorf("phrasedex: %w", err)
}

func firstMissingToken(st *store.Store, tokens []string) string {
	for _, t := range tokens {
		if _, found, err := st.PostingList(t); err == nil && !found {
			return t
		}
	}
	return ""
}

type stringSet map[string]struct{}

func (s stringSet) Contains(span string) bool {
	_, ok := s[span]
	return ok
}

// GetDocument resolves a single matched document id to its stored
// opaque record.
func (s *Searcher) GetDocument(docID uint32) ([]byte, error) {
	data, err := s.store.Document(docID)
	if err != nil {
		var notFound *store.ErrDocumentNotFound
		if ok := asDocumentNotFound(err, &notFound); ok {
			return nil, &DocumentNotFoundError{DocID: notFound.DocID}
		}
		return nil, err
	}
	return data, nil
}

// GetDocuments resolves several matched document ids in one pass.
func (s *Searcher) GetDocuments(docIDs []uint32) ([][]byte, error) {
	data, err := s.store.Documents(docIDs)
	if err != nil {
		var notFound *store.ErrDocumentNotFound
		if ok := asDocumentNotFound(err, &notFound); ok {
			return nil, &DocumentNotFoundError{DocID: notFound.DocID}
		}
		return nil, err
	}
	return data, nil
}

func asDocumentNotFound(err error, target **store.ErrDocumentNotFound) bool {
	if nf, ok := err.(*store.ErrDocumentNotFound); ok {
		*target = nf
		return true
	}
	return false
}
