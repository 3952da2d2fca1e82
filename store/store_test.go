package store

import (
	"path/filepath"
	"testing"

	"github.com/blazeq/phrasedex/roaringish"
)

func buildTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "index.db")
	postingPath := filepath.Join(dir, "posting.bin")

	b, err := NewBuilder(dbPath, postingPath)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	var run1, run2 roaringish.List
	run1.Push(0, []roaringish.Position{0, 1})
	run2.Push(3, []roaringish.Position{2})
	b.PutRun("cat", run1)
	b.PutRun("cat", run2) // second batch, merged at Finalize
	b.MarkCommon("beautiful cat")

	if err := b.PutDocument(0, []byte("doc zero")); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if err := b.PutDocument(3, []byte("doc three")); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	s, err := Open(dbPath, postingPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PostingList_MergesBatchesAcrossDocs(t *testing.T) {
	s := buildTestStore(t)
	list, found, err := s.PostingList("cat")
	if err != nil {
		t.Fatalf("PostingList: %v", err)
	}
	if !found {
		t.Fatal("PostingList: token not found")
	}
	if len(list) != 2 {
		t.Fatalf("PostingList returned %d words, want 2", len(list))
	}
	if roaringish.Doc(list[0]) != 0 || roaringish.Doc(list[1]) != 3 {
		t.Errorf("PostingList docs = %d,%d, want 0,3", roaringish.Doc(list[0]), roaringish.Doc(list[1]))
	}
}

func TestStore_PostingList_MissingToken(t *testing.T) {
	s := buildTestStore(t)
	_, found, err := s.PostingList("zebra")
	if err != nil {
		t.Fatalf("PostingList: %v", err)
	}
	if found {
		t.Fatal("PostingList: found a token that was never written")
	}
}

func TestStore_CommonTokens(t *testing.T) {
	s := buildTestStore(t)
	common, err := s.CommonTokens()
	if err != nil {
		t.Fatalf("CommonTokens: %v", err)
	}
	if _, ok := common["beautiful cat"]; !ok {
		t.Errorf("CommonTokens = %v, want to contain %q", common, "beautiful cat")
	}
	if len(common) != 1 {
		t.Errorf("CommonTokens = %v, want exactly 1 entry", common)
	}
}

func TestStore_Document(t *testing.T) {
	s := buildTestStore(t)
	data, err := s.Document(0)
	if err != nil {
		t.Fatalf("Document(0): %v", err)
	}
	if string(data) != "doc zero" {
		t.Errorf("Document(0) = %q, want %q", data, "doc zero")
	}

	_, err = s.Document(999)
	notFound, ok := err.(*ErrDocumentNotFound)
	if !ok {
		t.Fatalf("Document(999) = %v, want *ErrDocumentNotFound", err)
	}
	if notFound.DocID != 999 {
		t.Errorf("ErrDocumentNotFound.DocID = %d, want 999", notFound.DocID)
	}
}

func TestStore_Documents_Batch(t *testing.T) {
	s := buildTestStore(t)
	docs, err := s.Documents([]uint32{0, 3})
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if string(docs[0]) != "doc zero" || string(docs[1]) != "doc three" {
		t.Errorf("Documents = %q, want [doc zero, doc three]", docs)
	}
}

func TestBuilder_PutRun_DropsOverlongTokens(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "index.db")
	postingPath := filepath.Join(dir, "posting.bin")
	b, err := NewBuilder(dbPath, postingPath)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	overlong := make([]byte, MaxTokenBytes+1)
	for i := range overlong {
		overlong[i] = 'a'
	}
	var run roaringish.List
	run.Push(0, []roaringish.Position{0})
	b.PutRun(string(overlong), run)
	b.MarkCommon(string(overlong))

	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	s, err := Open(dbPath, postingPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, found, err := s.PostingList(string(overlong))
	if err != nil {
		t.Fatalf("PostingList: %v", err)
	}
	if found {
		t.Error("PostingList found an overlong token that should have been dropped")
	}
	common, err := s.CommonTokens()
	if err != nil {
		t.Fatalf("CommonTokens: %v", err)
	}
	if _, ok := common[string(overlong)]; ok {
		t.Error("CommonTokens retained an overlong span that should have been dropped")
	}
}

func TestStore_CommonTokens_MissingKeyIsKeyNotFound(t *testing.T) {
	// A store directory whose key/value file was never produced by
	// Builder.Finalize (e.g. an empty bbolt file with the buckets but
	// no common_tokens key) signals ErrKeyNotFound rather than an
	// empty set, since Finalize always writes the key.
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "index.db")
	postingPath := filepath.Join(dir, "posting.bin")

	b, err := NewBuilder(dbPath, postingPath)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	// Close the underlying bbolt handle directly, bypassing Finalize,
	// so the common_tokens key is never written.
	if err := b.postingFile.Close(); err != nil {
		t.Fatalf("closing posting file: %v", err)
	}
	if err := b.db.Close(); err != nil {
		t.Fatalf("closing db: %v", err)
	}

	s, err := Open(dbPath, postingPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, err = s.CommonTokens()
	keyNotFound, ok := err.(*ErrKeyNotFound)
	if !ok {
		t.Fatalf("CommonTokens = %v, want *ErrKeyNotFound", err)
	}
	if keyNotFound.Key != "common_tokens" || keyNotFound.DB != "main" {
		t.Errorf("ErrKeyNotFound = %+v, want Key=common_tokens DB=main", keyNotFound)
	}
}

func TestMergeRuns_AlignedAcrossRuns(t *testing.T) {
	var a, b roaringish.List
	a.Push(0, []roaringish.Position{0})
	a.Push(5, []roaringish.Position{0})
	b.Push(2, []roaringish.Position{0})
	b.Push(5, []roaringish.Position{1}) // same doc as a's second word, different position

	merged := mergeRuns([]roaringish.List{a, b})
	if len(merged) != 3 {
		t.Fatalf("mergeRuns produced %d words, want 3: %v", len(merged), merged)
	}
	if roaringish.Doc(merged[0]) != 0 || roaringish.Doc(merged[1]) != 2 || roaringish.Doc(merged[2]) != 5 {
		t.Fatalf("mergeRuns docs = %d,%d,%d, want 0,2,5", roaringish.Doc(merged[0]), roaringish.Doc(merged[1]), roaringish.Doc(merged[2]))
	}
	if roaringish.Values(merged[2]) != 0b11 {
		t.Errorf("merged doc 5 values = %04b, want 11 (positions 0 and 1 OR'd)", roaringish.Values(merged[2]))
	}
}
