package index

// WeightPrecision is the number of decimals a weight is written with. Stored
// weights stay unrounded.
const WeightPrecision = 3

// Posting records one document's occurrence of a term. It starts in the raw
// phase carrying Frequency and moves to the weighted phase exactly once.
type Posting struct {
	DocID     int
	Frequency int
	weight    float64
	weighted  bool
}

// Weighted reports whether the TF-IDF weight has been computed.
func (p Posting) Weighted() bool {
	return p.weighted
}

// Weight returns the unrounded TF-IDF weight and false while the posting is
// still in the raw phase.
func (p Posting) Weight() (float64, bool) {
	return p.weight, p.weighted
}

func (p *Posting) setWeight(w float64) {
	p.weight = w
	p.weighted = true
}

type PostingList []Posting

// TermEntry is one dictionary record with its postings.
type TermEntry struct {
	Term     string
	Postings PostingList
}

// DocFreq is the number of distinct documents containing the term.
func (e TermEntry) DocFreq() int {
	return len(e.Postings)
}
