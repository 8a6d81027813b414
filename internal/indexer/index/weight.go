package index

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/errors"
)

// Weigh replaces each posting's raw frequency with its TF-IDF weight:
//
//	TF  = frequency / total tokens of the document
//	IDF = N / document frequency of the term
//
// IDF is linear, not logarithmic. Postings membership and document ids are
// left untouched. On error the index is left unweighted.
func (idx *InvertedIndex) Weigh() error {
	if idx.weighted {
		return apperrors.New(apperrors.ErrInvalidState, "", "index already weighted")
	}
	n := float64(len(idx.docs))
	if idx.postSize > 0 && n == 0 {
		return apperrors.New(apperrors.ErrInvalidState, "", "postings present in an empty corpus")
	}

	// validate first so a failure leaves no posting half-converted
	for term, postings := range idx.postings {
		for _, p := range postings {
			doc, ok := idx.Document(p.DocID)
			if !ok {
				return apperrors.Newf(apperrors.ErrInvalidState, "", "term %q posts against unknown document %d", term, p.DocID)
			}
			if doc.Total <= 0 {
				return apperrors.Newf(apperrors.ErrInvalidState, doc.Filename, "term %q posts against a document with zero tokens", term)
			}
		}
	}

	for _, postings := range idx.postings {
		idf := n / float64(len(postings))
		for i := range postings {
			p := &postings[i]
			tf := float64(p.Frequency) / float64(idx.docs[p.DocID].Total)
			p.setWeight(tf * idf)
		}
	}
	idx.weighted = true
	return nil
}
