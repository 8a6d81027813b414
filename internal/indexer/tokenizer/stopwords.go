package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stopwords is a read-only set of words excluded from the index.
type Stopwords map[string]struct{}

// NewStopwords builds a set from the given words.
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func (s Stopwords) Len() int {
	return len(s)
}

// ReadStopwords reads one word per line. Surrounding whitespace is trimmed
// and blank lines are skipped.
func ReadStopwords(r io.Reader) (Stopwords, error) {
	s := make(Stopwords)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		s[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stopwords: %w", err)
	}
	return s, nil
}

// LoadStopwords reads the stopword file at path.
func LoadStopwords(path string) (Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stopword file: %w", err)
	}
	defer f.Close()
	s, err := ReadStopwords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
