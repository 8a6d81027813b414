package index

import "github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/tokenizer"

// Document is the normalized form of one input file. ID is its position in
// filename order; Terms holds each accepted term exactly once.
type Document struct {
	ID       int
	Filename string
	Terms    map[string]int
	Total    int
}

// NewDocument wraps a tokenizer result.
func NewDocument(id int, filename string, res tokenizer.Result) *Document {
	terms := res.Terms
	if terms == nil {
		terms = map[string]int{}
	}
	return &Document{
		ID:       id,
		Filename: filename,
		Terms:    terms,
		Total:    res.Total,
	}
}

// Empty reports whether no token survived normalization.
func (d *Document) Empty() bool {
	return d.Total == 0
}
