package segment

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/errors"
)

// Header lines of the two artifacts. The dictionary header describes the
// three lines of every record; both headers end with two blank lines.
const (
	DictHeaderWord     = "The word"
	DictHeaderDocFreq  = "The number of documents that contain that word (this corresponds to the number of records that word gets in the postings file)"
	DictHeaderLocation = "The location of the first record for that word in the postings file"
	PostingsHeader     = "The document id, The normalized weight of the word in the document"
)

// RecordSeparator sits between filename and weight on a postings line.
const RecordSeparator = ", "

// Paths locates the two artifacts of one run.
type Paths struct {
	Dictionary string
	Postings   string
}

// Stats summarizes what a Write produced.
type Stats struct {
	Terms    int
	Postings int
}

// Writer serialises a weighted index into the dictionary and postings files.
type Writer struct {
	dir   string
	paths Paths
}

// NewWriter creates a Writer that writes dictName and postName into dir.
func NewWriter(dir, dictName, postName string) *Writer {
	return &Writer{
		dir: dir,
		paths: Paths{
			Dictionary: filepath.Join(dir, dictName),
			Postings:   filepath.Join(dir, postName),
		},
	}
}

// Paths returns where Write puts the artifacts.
func (w *Writer) Paths() Paths {
	return w.paths
}

// FormatWeight renders a weight with exactly three decimals.
func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', index.WeightPrecision, 64)
}

// Write emits entries, which must be sorted by term with weighted postings,
// in one pass. filenames maps document id to file name. Each artifact is
// written to a .tmp file and renamed into place once both are complete.
func (w *Writer) Write(entries []index.TermEntry, filenames []string) (Stats, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Stats{}, apperrors.Wrap(apperrors.ErrOutputWrite, w.dir, err)
	}
	dictTmp := w.paths.Dictionary + ".tmp"
	postTmp := w.paths.Postings + ".tmp"

	stats, err := w.writeTemp(entries, filenames, dictTmp, postTmp)
	if err != nil {
		os.Remove(dictTmp)
		os.Remove(postTmp)
		return Stats{}, err
	}
	if err := os.Rename(postTmp, w.paths.Postings); err != nil {
		os.Remove(dictTmp)
		os.Remove(postTmp)
		return Stats{}, apperrors.Wrap(apperrors.ErrOutputWrite, w.paths.Postings, err)
	}
	if err := os.Rename(dictTmp, w.paths.Dictionary); err != nil {
		os.Remove(dictTmp)
		return Stats{}, apperrors.Wrap(apperrors.ErrOutputWrite, w.paths.Dictionary, err)
	}
	return stats, nil
}

func (w *Writer) writeTemp(entries []index.TermEntry, filenames []string, dictPath, postPath string) (Stats, error) {
	dictFile, err := os.Create(dictPath)
	if err != nil {
		return Stats{}, apperrors.Wrap(apperrors.ErrOutputWrite, dictPath, err)
	}
	defer dictFile.Close()
	postFile, err := os.Create(postPath)
	if err != nil {
		return Stats{}, apperrors.Wrap(apperrors.ErrOutputWrite, postPath, err)
	}
	defer postFile.Close()

	dict := bufio.NewWriter(dictFile)
	post := bufio.NewWriter(postFile)

	fmt.Fprintf(dict, "%s\n%s\n%s\n\n\n", DictHeaderWord, DictHeaderDocFreq, DictHeaderLocation)
	fmt.Fprintf(post, "%s\n\n\n", PostingsHeader)

	var stats Stats
	position := 1
	prev := ""
	for i, entry := range entries {
		if i > 0 && entry.Term <= prev {
			return Stats{}, apperrors.Newf(apperrors.ErrInvalidState, "", "terms out of order: %q after %q", entry.Term, prev)
		}
		prev = entry.Term
		if entry.DocFreq() == 0 {
			return Stats{}, apperrors.Newf(apperrors.ErrInvalidState, "", "term %q has no postings", entry.Term)
		}
		dict.WriteString(entry.Term)
		dict.WriteByte('\n')
		dict.WriteString(strconv.Itoa(entry.DocFreq()))
		dict.WriteByte('\n')
		dict.WriteString(strconv.Itoa(position))
		dict.WriteByte('\n')
		position += entry.DocFreq()

		for _, p := range entry.Postings {
			weight, ok := p.Weight()
			if !ok {
				return Stats{}, apperrors.Newf(apperrors.ErrInvalidState, "", "term %q: posting for document %d is not weighted", entry.Term, p.DocID)
			}
			if p.DocID < 0 || p.DocID >= len(filenames) {
				return Stats{}, apperrors.Newf(apperrors.ErrInvalidState, "", "term %q: no filename for document %d", entry.Term, p.DocID)
			}
			post.WriteString(filenames[p.DocID])
			post.WriteString(RecordSeparator)
			post.WriteString(FormatWeight(weight))
			post.WriteByte('\n')
			stats.Postings++
		}
		stats.Terms++
	}

	if err := flushAndSync(dict, dictFile); err != nil {
		return Stats{}, apperrors.Wrap(apperrors.ErrOutputWrite, dictPath, err)
	}
	if err := flushAndSync(post, postFile); err != nil {
		return Stats{}, apperrors.Wrap(apperrors.ErrOutputWrite, postPath, err)
	}
	return stats, nil
}

func flushAndSync(bw *bufio.Writer, f *os.File) error {
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing: %w", err)
	}
	return f.Close()
}
