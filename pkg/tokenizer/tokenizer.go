// Package tokenizer counts cl100k_base tokens, the unit every segmentation
// budget and usage figure in glossa is expressed in.
package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	loadOnce sync.Once
	encoding *tiktoken.Tiktoken
	loadErr  error
)

func load() *tiktoken.Tiktoken {
	loadOnce.Do(func() {
		encoding, loadErr = tiktoken.GetEncoding(encodingName)
	})
	if loadErr != nil {
		panic(loadErr)
	}
	return encoding
}

// Preload loads the encoding tables so startup fails fast when they are
// unavailable. Without it the first Len call loads them lazily.
func Preload() error {
	loadOnce.Do(func() {
		encoding, loadErr = tiktoken.GetEncoding(encodingName)
	})
	return loadErr
}

// Len returns the number of cl100k_base tokens in s.
func Len(s string) int {
	return len(load().Encode(s, []string{"all"}, nil))
}
