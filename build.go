package phrasedex

import (
	"github.com/blazeq/phrasedex/internal/tokenize"
	"github.com/blazeq/phrasedex/planner"
	"github.com/blazeq/phrasedex/roaringish"
	"github.com/blazeq/phrasedex/store"
)

// Document is one unit of build-time input: an opaque record plus the
// text it should be searchable by. Tokenization of incoming documents,
// and everything upstream of turning them into posting runs, is owned
// by the caller's ingestion pipeline in a real deployment; Build exists
// so the engine is exercisable end to end without one.
type Document struct {
	ID     uint32
	Text   string
	Record []byte
}

// Build writes a fresh index at dbPath/postingPath from docs, in a
// single batch. Every token window up to planner.MaxWindowLen tokens
// wide, within a document, gets its own precomputed posting, and every
// window wider than one token is flagged common -- a real build pipeline would curate a much smaller
// common-window set based on observed query load or corpus frequency,
// but the engine's correctness does not depend on which windows are
// precomputed, only that the planner never picks one that isn't.
func Build(dbPath, postingPath string, docs []Document) error {
	b, err := store.NewBuilder(dbPath, postingPath)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		tokens, err := tokenize.Normalize(doc.Text)
		if err != nil {
			continue // no tokens: nothing to index for this document
		}
		texts := tokenize.Texts(tokens)

		for w := 1; w <= planner.MaxWindowLen; w++ {
			for i := 0; i+w <= len(texts); i++ {
				span := planner.JoinSpan(texts, i, w)
				positions := windowPositions(i, w)
				var run roaringish.List
				run.Push(roaringish.DocID(doc.ID), positions)
				b.PutRun(span, run)
				if w > 1 {
					b.MarkCommon(span)
				}
			}
		}

		if err := b.PutDocument(doc.ID, doc.Record); err != nil {
			return err
		}
	}

	return b.Finalize()
}

// windowPositions returns the single starting position of a w-wide
// window at token index i: a window's posting records only where the
// window *begins*, since the planner's group offsets already account
// for its width when intersecting against neighboring groups.
func windowPositions(i, w int) []roaringish.Position {
	_ = w
	return []roaringish.Position{roaringish.Position(i)}
}
