// Package extract turns raw document bytes into the plain text the tokenizer
// works on. Invalid UTF-8 never fails extraction: each bad byte becomes
// U+FFFD and the caller is told a replacement happened.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Extractor converts one document's bytes to text.
type Extractor interface {
	// Extract returns the document text and whether invalid byte sequences
	// were replaced while decoding.
	Extract(data []byte) (text string, replaced bool, err error)
}

// New returns the extractor registered under name ("html" or "text").
func New(name string) (Extractor, error) {
	switch name {
	case "html":
		return HTML{}, nil
	case "text":
		return Text{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
}

// Decode converts data to valid UTF-8, replacing every invalid byte with
// U+FFFD.
func Decode(data []byte) (string, bool, error) {
	if utf8.Valid(data) {
		return string(data), false, nil
	}
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if err != nil {
		return "", true, fmt.Errorf("decoding document bytes: %w", err)
	}
	return string(out), true, nil
}

// Text passes decoded bytes through unchanged.
type Text struct{}

func (Text) Extract(data []byte) (string, bool, error) {
	return Decode(data)
}

// HTML concatenates the text nodes of an HTML document. Comments and the
// contents of script, style and template elements are not text.
type HTML struct{}

func (HTML) Extract(data []byte) (string, bool, error) {
	decoded, replaced, err := Decode(data)
	if err != nil {
		return "", replaced, err
	}
	z := html.NewTokenizer(strings.NewReader(decoded))
	var buf bytes.Buffer
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", replaced, fmt.Errorf("tokenizing html: %w", err)
			}
			return buf.String(), replaced, nil
		case html.StartTagToken:
			if isRawTextElement(z) {
				skipDepth++
			}
		case html.EndTagToken:
			if skipDepth > 0 && isRawTextElement(z) {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(z.Text())
			}
		}
	}
}

func isRawTextElement(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Template:
		return true
	}
	return false
}
