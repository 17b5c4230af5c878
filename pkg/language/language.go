// Package language resolves user-supplied language identifiers and detects
// document languages. Codes follow ISO 639; the service speaks 639-3 codes
// on the wire and English names in prompts.
package language

import (
	"strings"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

// Und is the undetermined language code.
const Und = "und"

var (
	by1    = map[string]Entry{}
	by3    = map[string]Entry{}
	byName = map[string]Entry{}
)

func init() {
	for _, e := range table {
		by1[e[0]] = e
		by3[e[1]] = e
		byName[strings.ToLower(e[2])] = e
	}
}

// Normalize resolves s, a 639-1 code, 639-3 code or English name, to its
// 639-3 code. Unknown inputs resolve to Und.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch len(s) {
	case 0:
		return Und
	case 2:
		if e, ok := by1[s]; ok {
			return e[1]
		}
	case 3:
		if s == Und {
			return Und
		}
		if e, ok := by3[s]; ok {
			return e[1]
		}
	}
	if e, ok := byName[s]; ok {
		return e[1]
	}
	return Und
}

// Name returns the English name for a 639-3 code, or "" when unknown.
func Name(code string) string {
	code = strings.ToLower(code)
	if code == Und {
		return "Undetermined"
	}
	if e, ok := by3[code]; ok {
		return e[2]
	}
	return ""
}

// Codes the chat models translate poorly; kept out of the offered list.
var blacklist = map[string]bool{
	"abk": true, "ava": true, "bak": true, "lim": true, "nya": true, "iii": true,
}

// List returns the languages offered for translation, ordered by English
// name. Entries without an autonym or an ASCII English name are excluded,
// as are the blacklisted codes.
func List() []Entry {
	out := make([]Entry, 0, len(table))
	for _, e := range table {
		if blacklist[e[1]] || e[3] == "" || !isASCII(e[2]) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Detector wraps a lingua detector built over all supported languages.
type Detector struct {
	inner lingua.LanguageDetector
}

// NewDetector builds a detector with preloaded models. Loading is slow and
// memory-hungry; dev setups use NewLazyDetector.
func NewDetector() *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithPreloadedLanguageModels().
		Build()
	return &Detector{inner: d}
}

// NewLazyDetector builds a detector that loads language models on demand.
func NewLazyDetector() *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
	return &Detector{inner: d}
}

// Detect returns the 639-3 code of the dominant language of text, or Und
// when no language is confident enough.
func (d *Detector) Detect(text string) string {
	if lang, ok := d.inner.DetectLanguageOf(text); ok {
		return strings.ToLower(lang.IsoCode639_3().String())
	}
	return Und
}
