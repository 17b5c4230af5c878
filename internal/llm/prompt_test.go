package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslatePrompt(t *testing.T) {
	p := translatePrompt("", "", "Chinese")
	assert.Contains(t, p, "Become proficient in Chinese language.")
	assert.Contains(t, p, "Contextual definition: not provide.")
	assert.Contains(t, p, "Translate the texts in JSON into Chinese")

	p = translatePrompt("A tech blog.\r\nAbout Go.", "English", "Chinese")
	assert.Contains(t, p, "Become proficient in English and Chinese languages.")
	assert.Contains(t, p, "Contextual definition: A tech blog.. . About Go.")
	assert.NotContains(t, p, "\r")
	assert.Equal(t, 1, strings.Count(p, "\n- Contextual definition:"))
}

func TestSummarizePrompt(t *testing.T) {
	p := summarizePrompt("French")
	assert.Contains(t, p, "increasingly concise")
	assert.Contains(t, p, "French")
}

func TestKeywordsPrompt(t *testing.T) {
	p := keywordsPrompt("Japanese")
	assert.Contains(t, p, "up to 5 top keywords")
	assert.Equal(t, 2, strings.Count(p, "Japanese"))
}
