// Package segmenter splits structured documents into token-budgeted units
// for translation, summarization and embedding, and reassembles model
// output back into document order.
package segmenter

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Separator is the section id marking a soft boundary in incoming content.
const Separator = "------"

// TokensFn reports the model token count of a string.
type TokensFn func(string) int

// Section is one node of a structured document.
type Section struct {
	ID    string   `json:"id" cbor:"id"`
	Texts []string `json:"texts" cbor:"texts"`
}

// TranslatingString returns the JSON form of Texts, the representation the
// chat model receives and is asked to preserve.
func (s *Section) TranslatingString() string {
	b, err := json.Marshal(s.Texts)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Compact joins all text fragments with sep, collapsing runs of whitespace.
func (s *Section) Compact(sep string) string {
	var b strings.Builder
	for _, t := range s.Texts {
		for _, w := range strings.Fields(t) {
			if b.Len() > 0 {
				b.WriteString(sep)
			}
			b.WriteString(w)
		}
	}
	return b.String()
}

// DetectString returns up to ~4 KB of plain text from content, the sample
// handed to language detection.
func DetectString(content []Section) string {
	var b strings.Builder
	b.Grow(5000)
	for i := range content {
		if b.Len() > 4096 {
			break
		}
		b.WriteString(content[i].Compact("\n"))
		b.WriteByte('\n')
	}
	return b.String()
}

// Colon variants the model may emit in place of U+003A when translating
// order tags. https://en.wikipedia.org/wiki/Colon_(punctuation)
var colons = [...]rune{':', '˸', '׃', '∶', '꞉', '︓', '：', '﹕'}

// extractOrder splits a model output row into its 1-based order tag and the
// remaining texts. Rows without a parsable "N:" head are order 0.
func extractOrder(row []string) (int, []string) {
	if len(row) == 0 {
		return 0, row
	}
	head := row[0]
	r, size := utf8.DecodeLastRuneInString(head)
	tagged := false
	for _, c := range colons {
		if r == c {
			tagged = true
			break
		}
	}
	if tagged {
		if o, err := strconv.Atoi(head[:len(head)-size]); err == nil && o > 0 {
			return o, row[1:]
		}
	}
	return 0, row
}
