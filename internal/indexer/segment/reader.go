package segment

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DictEntry is one dictionary record: a term, its document frequency and the
// 1-based position of its first postings record.
type DictEntry struct {
	Term     string
	DocFreq  int
	Position int
}

// Record is one postings line.
type Record struct {
	Filename string
	Weight   string
}

// Reader holds a parsed dictionary and postings file pair.
type Reader struct {
	paths    Paths
	dict     []DictEntry
	postings []Record
}

// OpenReader parses both artifacts.
func OpenReader(paths Paths) (*Reader, error) {
	dictLines, err := readLines(paths.Dictionary)
	if err != nil {
		return nil, err
	}
	postLines, err := readLines(paths.Postings)
	if err != nil {
		return nil, err
	}

	dictHeader := []string{DictHeaderWord, DictHeaderDocFreq, DictHeaderLocation, "", ""}
	if err := expectHeader(paths.Dictionary, dictLines, dictHeader); err != nil {
		return nil, err
	}
	if err := expectHeader(paths.Postings, postLines, []string{PostingsHeader, "", ""}); err != nil {
		return nil, err
	}

	body := dictLines[len(dictHeader):]
	if len(body)%3 != 0 {
		return nil, fmt.Errorf("parsing dictionary %s: %d record lines is not a multiple of 3", paths.Dictionary, len(body))
	}
	dict := make([]DictEntry, 0, len(body)/3)
	for i := 0; i < len(body); i += 3 {
		df, err := strconv.Atoi(body[i+1])
		if err != nil {
			return nil, fmt.Errorf("parsing dictionary %s: document frequency of %q: %w", paths.Dictionary, body[i], err)
		}
		pos, err := strconv.Atoi(body[i+2])
		if err != nil {
			return nil, fmt.Errorf("parsing dictionary %s: position of %q: %w", paths.Dictionary, body[i], err)
		}
		dict = append(dict, DictEntry{Term: body[i], DocFreq: df, Position: pos})
	}

	records := make([]Record, 0, len(postLines)-3)
	for _, line := range postLines[3:] {
		cut := strings.LastIndex(line, RecordSeparator)
		if cut < 0 {
			return nil, fmt.Errorf("parsing postings %s: malformed record %q", paths.Postings, line)
		}
		records = append(records, Record{Filename: line[:cut], Weight: line[cut+len(RecordSeparator):]})
	}

	return &Reader{paths: paths, dict: dict, postings: records}, nil
}

// Lookup returns the postings records of term, or nil when the term is not
// in the dictionary.
func (r *Reader) Lookup(term string) ([]Record, error) {
	idx := sort.Search(len(r.dict), func(i int) bool {
		return r.dict[i].Term >= term
	})
	if idx >= len(r.dict) || r.dict[idx].Term != term {
		return nil, nil
	}
	entry := r.dict[idx]
	start := entry.Position - 1
	end := start + entry.DocFreq
	if start < 0 || end > len(r.postings) {
		return nil, fmt.Errorf("term %q points at records %d..%d of %d", term, entry.Position, end, len(r.postings))
	}
	return r.postings[start:end], nil
}

// Verify checks the artifact invariants: terms strictly ascending, positions
// forming a running sum of document frequencies starting at 1, and one
// postings line per counted document.
func (r *Reader) Verify() error {
	position := 1
	for i, entry := range r.dict {
		if i > 0 && entry.Term <= r.dict[i-1].Term {
			return fmt.Errorf("dictionary %s: term %q not after %q", r.paths.Dictionary, entry.Term, r.dict[i-1].Term)
		}
		if entry.DocFreq < 1 {
			return fmt.Errorf("dictionary %s: term %q has document frequency %d", r.paths.Dictionary, entry.Term, entry.DocFreq)
		}
		if entry.Position != position {
			return fmt.Errorf("dictionary %s: term %q at position %d, want %d", r.paths.Dictionary, entry.Term, entry.Position, position)
		}
		position += entry.DocFreq
	}
	if got, want := len(r.postings), position-1; got != want {
		return fmt.Errorf("postings %s: %d records, dictionary counts %d", r.paths.Postings, got, want)
	}
	return nil
}

func (r *Reader) Terms() int {
	return len(r.dict)
}

func (r *Reader) Postings() int {
	return len(r.postings)
}

// Entries returns the dictionary records in file order.
func (r *Reader) Entries() []DictEntry {
	return r.dict
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	return lines, nil
}

func expectHeader(path string, lines, header []string) error {
	if len(lines) < len(header) {
		return fmt.Errorf("artifact %s: truncated header", path)
	}
	for i, want := range header {
		if lines[i] != want {
			return fmt.Errorf("artifact %s: header line %d is %q, want %q", path, i+1, lines[i], want)
		}
	}
	return nil
}
