// Package jsonrepair rebuilds the malformed JSON the chat models
// occasionally return for two-dimensional string arrays. It handles the
// observed failure shapes, a lone backslash, stray unescaped quotes inside
// strings, a string after `",` missing its opening quote, and output
// truncated before the closing `]`s, and compacts whitespace along the way.
// Only arrays, objects and strings are supported.
package jsonrepair

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

type scanner struct {
	data   []rune
	offset int
	out    strings.Builder
}

// Fix scans s and returns it as compact, valid JSON, or an error describing
// the first token it could not make sense of.
func Fix(s string) (string, error) {
	sc := &scanner{data: []rune(strings.TrimSpace(s))}
	sc.out.Grow(len(s))

	sc.skipSpace()
	if sc.offset == len(sc.data) {
		return "", errors.New("no token to scan")
	}

	var err error
	switch sc.data[sc.offset] {
	case '[':
		err = sc.array()
	case '{':
		err = sc.object()
	case '"':
		err = sc.text()
	default:
		err = fmt.Errorf("unknown token `%c` to start", sc.data[sc.offset])
	}
	if err != nil {
		return "", err
	}

	sc.skipSpace()
	if sc.offset < len(sc.data) {
		return "", fmt.Errorf("extraneous data exist: `%c`", sc.data[sc.offset])
	}
	return sc.out.String(), nil
}

func (sc *scanner) skipSpace() {
	for sc.offset < len(sc.data) && unicode.IsSpace(sc.data[sc.offset]) {
		sc.offset++
	}
}

func (sc *scanner) array() error {
	sc.out.WriteByte('[')
	sc.offset++
	sc.skipSpace()

	if sc.offset < len(sc.data) && sc.data[sc.offset] == ']' {
		sc.out.WriteByte(']')
		sc.offset++
		return nil
	}

	lastText := false
	for sc.offset < len(sc.data) {
		switch sc.data[sc.offset] {
		case '{':
			if err := sc.object(); err != nil {
				return err
			}
			lastText = false
		case '[':
			if err := sc.array(); err != nil {
				return err
			}
			lastText = false
		case '"':
			if err := sc.text(); err != nil {
				return err
			}
			lastText = true
		default:
			if !lastText {
				return fmt.Errorf("unsupport token `%c%c` to start in array",
					sc.data[sc.offset-1], sc.data[sc.offset])
			}
			// a string after `",` lost its opening quote, reopen it
			if err := sc.reopenText(); err != nil {
				return err
			}
		}

		sc.skipSpace()
		if sc.offset >= len(sc.data) {
			// truncated output, supply the missing closer
			sc.out.WriteByte(']')
			return nil
		}

		switch sc.data[sc.offset] {
		case ',':
			sc.offset++
			sc.skipSpace()
			if sc.offset >= len(sc.data) {
				sc.out.WriteByte(']')
				return nil
			}
			sc.out.WriteByte(',')
		case ']':
			sc.out.WriteByte(']')
			sc.offset++
			return nil
		default:
			return fmt.Errorf("unsupport token `%c%c` to end in array",
				sc.data[sc.offset-1], sc.data[sc.offset])
		}
	}
	sc.out.WriteByte(']')
	return nil
}

func (sc *scanner) object() error {
	sc.out.WriteByte('{')
	sc.offset++
	sc.skipSpace()

	if sc.offset < len(sc.data) && sc.data[sc.offset] == '}' {
		sc.out.WriteByte('}')
		sc.offset++
		return nil
	}

	for sc.offset < len(sc.data) {
		if sc.data[sc.offset] != '"' {
			return fmt.Errorf("unsupport token `%c%c` to start for object key",
				sc.data[sc.offset-1], sc.data[sc.offset])
		}
		if err := sc.key(); err != nil {
			return err
		}

		sc.skipSpace()
		if sc.offset >= len(sc.data) {
			return errors.New("no token to scan in object")
		}

		if sc.data[sc.offset] != ':' {
			return fmt.Errorf("unsupport token `%c%c` to start for object colon",
				sc.data[sc.offset-1], sc.data[sc.offset])
		}
		sc.out.WriteByte(':')
		sc.offset++
		sc.skipSpace()

		if sc.offset >= len(sc.data) {
			return errors.New("no token to scan in object")
		}

		switch sc.data[sc.offset] {
		case '{':
			if err := sc.object(); err != nil {
				return err
			}
		case '[':
			if err := sc.array(); err != nil {
				return err
			}
		case '"':
			if err := sc.text(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupport token `%c%c` to start for object value",
				sc.data[sc.offset-1], sc.data[sc.offset])
		}

		sc.skipSpace()
		if sc.offset >= len(sc.data) {
			return errors.New("no token to scan in object")
		}

		switch sc.data[sc.offset] {
		case ',':
			sc.out.WriteByte(',')
			sc.offset++
			sc.skipSpace()
		case '}':
			sc.out.WriteByte('}')
			sc.offset++
			return nil
		default:
			return fmt.Errorf("unsupport token `%c%c` to end in object",
				sc.data[sc.offset-1], sc.data[sc.offset])
		}
	}
	return errors.New("no char to scan in object")
}

// keys are copied verbatim to the closing quote, escapes included
func (sc *scanner) key() error {
	sc.out.WriteByte('"')
	sc.offset++

	for sc.offset < len(sc.data) {
		if sc.data[sc.offset] == '"' {
			sc.out.WriteByte('"')
			sc.offset++
			return nil
		}
		sc.out.WriteRune(sc.data[sc.offset])
		sc.offset++
	}
	return errors.New("no token to finish object key")
}

func (sc *scanner) text() error {
	sc.offset++
	return sc.reopenText()
}

// reopenText scans string content with the opening quote already consumed,
// or repaired away entirely.
func (sc *scanner) reopenText() error {
	sc.out.WriteByte('"')

	for sc.offset < len(sc.data) {
		switch sc.data[sc.offset] {
		case '\\':
			sc.out.WriteByte('\\')
			sc.offset++
			if sc.offset >= len(sc.data) {
				return errors.New("no token to scan for text")
			}
			switch sc.data[sc.offset] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				sc.out.WriteRune(sc.data[sc.offset])
				sc.offset++
			default:
				// a lone backslash becomes an escaped backslash
				sc.out.WriteByte('\\')
				sc.out.WriteRune(sc.data[sc.offset])
				sc.offset++
			}
		case '"':
			sc.offset++
			sc.skipSpace()
			if sc.offset >= len(sc.data) {
				sc.out.WriteByte('"')
				return nil
			}

			if sc.canNotEndText() {
				// interior quote: drop it and keep scanning
				continue
			}

			switch sc.data[sc.offset] {
			case ',', ':', '}', ']':
				sc.out.WriteByte('"')
				return nil
			default:
				sc.out.WriteRune(sc.data[sc.offset])
				sc.offset++
			}
		default:
			sc.out.WriteRune(sc.data[sc.offset])
			sc.offset++
		}
	}
	return errors.New("no token to finish text")
}

// canNotEndText looks ahead from the current offset to decide whether the
// quote just consumed may close the string. A chain of closers means it
// may, and a comma always does: the value after it is reopened by the array
// scanner when its own quote is missing.
func (sc *scanner) canNotEndText() bool {
	for i := sc.offset; i < len(sc.data); i++ {
		switch {
		case unicode.IsSpace(sc.data[i]):
		case sc.data[i] == ',':
			return false
		case sc.data[i] == '}' || sc.data[i] == ']':
		default:
			return true
		}
	}
	return false
}
