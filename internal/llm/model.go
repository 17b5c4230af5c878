package llm

import (
	"strings"

	"github.com/glossahq/glossa/pkg/errors"
)

// Model is a client-facing model identifier.
type Model string

const (
	// ModelGPT3_5 is the default chat model.
	ModelGPT3_5 Model = "gpt-3.5"
	// ModelGPT4 is the large-context chat model.
	ModelGPT4 Model = "gpt-4"
)

const (
	openaiNameGPT3_5 = "gpt-3.5-turbo"
	openaiNameGPT4   = "gpt-4"

	// EmbeddingModel is the embedding model every backend serves, 1536
	// dimensions.
	EmbeddingModel = "text-embedding-ada-002"
)

// ParseModel maps user input to a Model. Empty input defaults to gpt-3.5,
// matching is by lowercased prefix.
func ParseModel(s string) (Model, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return ModelGPT3_5, nil
	case strings.HasPrefix(v, string(ModelGPT4)):
		return ModelGPT4, nil
	case strings.HasPrefix(v, string(ModelGPT3_5)):
		return ModelGPT3_5, nil
	}
	return "", errors.New(400, "invalid model: %s", s)
}

func (m Model) String() string {
	return string(m)
}

// OpenAIName returns the wire name used in request bodies and for backend
// selection.
func (m Model) OpenAIName() string {
	if m == ModelGPT4 {
		return openaiNameGPT4
	}
	return openaiNameGPT3_5
}

// TranslatingSegmentTokens returns the recommended and high token budgets
// for translation segmentation.
func (m Model) TranslatingSegmentTokens() (int, int) {
	return 3000, 3400
}

// MaxTokens returns the completion token limit for chat calls.
func (m Model) MaxTokens() int {
	return 4096
}
