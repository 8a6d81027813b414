package index

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/errors"
)

// Vocabulary returns the distinct terms of the corpus.
func Vocabulary(docs []*Document) map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, doc := range docs {
		for term := range doc.Terms {
			vocab[term] = struct{}{}
		}
	}
	return vocab
}

// InvertedIndex maps each term to the documents containing it. It is built
// once from a complete corpus and is not safe for concurrent mutation.
type InvertedIndex struct {
	postings map[string]PostingList
	docs     []*Document
	postSize int
	weighted bool
}

// Build folds every document's frequency table into the index. vocab sizes
// the term map; a nil vocab is allowed. Postings reference documents by ID,
// and docs[i].ID must equal i.
func Build(vocab map[string]struct{}, docs []*Document) (*InvertedIndex, error) {
	idx := &InvertedIndex{
		postings: make(map[string]PostingList, len(vocab)),
		docs:     docs,
	}
	for i, doc := range docs {
		if doc == nil || doc.ID != i {
			return nil, apperrors.Newf(apperrors.ErrInvalidState, "", "document at position %d has mismatched id", i)
		}
		for term, freq := range doc.Terms {
			if freq <= 0 {
				continue
			}
			idx.postings[term] = append(idx.postings[term], Posting{
				DocID:     doc.ID,
				Frequency: freq,
			})
			idx.postSize++
		}
	}
	return idx, nil
}

// Terms returns the number of distinct terms.
func (idx *InvertedIndex) Terms() int {
	return len(idx.postings)
}

// Size returns the total number of postings.
func (idx *InvertedIndex) Size() int {
	return idx.postSize
}

// DocCount returns the corpus size N.
func (idx *InvertedIndex) DocCount() int {
	return len(idx.docs)
}

// Document returns the document with the given id.
func (idx *InvertedIndex) Document(id int) (*Document, bool) {
	if id < 0 || id >= len(idx.docs) {
		return nil, false
	}
	return idx.docs[id], true
}

// Weighted reports whether Weigh has completed.
func (idx *InvertedIndex) Weighted() bool {
	return idx.weighted
}

// Lookup returns the postings of term sorted by document id.
func (idx *InvertedIndex) Lookup(term string) PostingList {
	postings, ok := idx.postings[term]
	if !ok {
		return nil
	}
	result := slices.Clone(postings)
	sortPostings(result)
	return result
}

// Snapshot returns every term in ascending order with its postings sorted by
// (document id, weight).
func (idx *InvertedIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(idx.postings))
	for term, postings := range idx.postings {
		sorted := slices.Clone(postings)
		sortPostings(sorted)
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: sorted,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

func sortPostings(p PostingList) {
	slices.SortFunc(p, func(a, b Posting) int {
		if c := cmp.Compare(a.DocID, b.DocID); c != 0 {
			return c
		}
		return cmp.Compare(a.weight, b.weight)
	})
}

func (idx *InvertedIndex) String() string {
	return fmt.Sprintf("InvertedIndex{terms: %d, postings: %d, docs: %d}", idx.Terms(), idx.Size(), idx.DocCount())
}
