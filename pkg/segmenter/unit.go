package segmenter

import (
	"strconv"
	"strings"
)

// Unit is a run of sections translated or embedded as one model call.
type Unit struct {
	Tokens  int       `json:"tokens" cbor:"tokens"`
	Content []Section `json:"content" cbor:"content"`
}

// IDs returns the section ids in document order.
func (u *Unit) IDs() []string {
	ids := make([]string, 0, len(u.Content))
	for i := range u.Content {
		ids = append(ids, u.Content[i].ID)
	}
	return ids
}

// EmbeddingString flattens the unit into sentence-separated plain text for
// the embedding model.
func (u *Unit) EmbeddingString() string {
	var b strings.Builder
	for i := range u.Content {
		b.WriteString(strings.TrimSpace(u.Content[i].Compact(" ")))
		if strings.HasSuffix(b.String(), ".") {
			b.WriteString(" ")
		} else {
			b.WriteString(". ")
		}
	}
	return strings.TrimSpace(b.String())
}

// TranslatingList renders the unit as rows for the chat model, each section
// prefixed with a 1-based "N:" order tag.
func (u *Unit) TranslatingList() [][]string {
	res := make([][]string, 0, len(u.Content))
	for i := range u.Content {
		row := make([]string, 0, len(u.Content[i].Texts)+1)
		row = append(row, strconv.Itoa(i+1)+":")
		row = append(row, u.Content[i].Texts...)
		res = append(res, row)
	}
	return res
}

// ReplaceTexts maps model output rows back onto the unit's sections. Rows
// carrying an order tag fill that section; untagged rows fill positionally;
// a row tagged beyond the current position waits, leaving empty sections
// behind. The result always has exactly len(u.Content) sections.
func (u *Unit) ReplaceTexts(input [][]string) []Section {
	next := 0
	take := func() (int, []string) {
		if next >= len(input) {
			return 0, nil
		}
		row := input[next]
		next++
		return extractOrder(row)
	}

	res := make([]Section, 0, len(u.Content))
	o, texts := take()
	for i := range u.Content {
		te := Section{ID: u.Content[i].ID, Texts: []string{}}
		if o <= i+1 {
			te.Texts = append(te.Texts, texts...)
			o, texts = take()
		}
		res = append(res, te)
	}
	return res
}
