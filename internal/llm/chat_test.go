package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossahq/glossa/pkg/errors"
)

func TestCheckChatResponse(t *testing.T) {
	response := func(reason, content string, n int) *chatResponse {
		res := &chatResponse{}
		for i := 0; i < n; i++ {
			res.Choices = append(res.Choices, chatChoice{
				Index:        i,
				Message:      chatMessage{Role: "assistant", Content: content},
				FinishReason: reason,
			})
		}
		return res
	}

	t.Run("choices", func(t *testing.T) {
		err := checkChatResponse(response("stop", "x", 0))
		require.Error(t, err)
		assert.Equal(t, 500, errors.Code(err))
		assert.Contains(t, err.Error(), "Unexpected choices: 0")

		err = checkChatResponse(response("stop", "x", 2))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unexpected choices: 2")
	})

	t.Run("stop", func(t *testing.T) {
		assert.NoError(t, checkChatResponse(response("stop", "x", 1)))
		assert.NoError(t, checkChatResponse(response("", "x", 1)))
	})

	t.Run("content filter", func(t *testing.T) {
		err := checkChatResponse(response("content_filter", "redacted", 1))
		require.Error(t, err)
		he := errors.From(err)
		assert.Equal(t, 452, he.Code)
		assert.Equal(t, "Content was triggered the filtering model", he.Message)
		assert.Equal(t, "redacted", he.Data)
	})

	t.Run("length", func(t *testing.T) {
		err := checkChatResponse(response("length", "partial output", 1))
		require.Error(t, err)
		he := errors.From(err)
		assert.Equal(t, 422, he.Code)
		assert.Equal(t, "Incomplete output due to max_tokens parameter", he.Message)
		assert.Equal(t, "partial output", he.Data)
	})

	t.Run("unknown", func(t *testing.T) {
		err := checkChatResponse(response("tool_calls", "x", 1))
		require.Error(t, err)
		assert.Equal(t, 500, errors.Code(err))
		assert.Contains(t, err.Error(), "Unknown finish reason: tool_calls")
	})
}

func TestTranslate(t *testing.T) {
	input := [][]string{{"a", "Hello"}, {"b", "World"}}
	opts := TranslateOptions{
		Model:      ModelGPT3_5,
		User:       "u1",
		OriginLang: "English",
		TargetLang: "Chinese",
	}

	t.Run("well-formed output", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			chatOK(w, `[["a","你好"],["b","世界"]]`)
		})
		c := testClient(t, fb.srv.URL)

		tokens, content, err := c.Translate(context.Background(), opts, input)
		require.NoError(t, err)
		assert.Equal(t, 30, tokens)
		assert.Equal(t, [][]string{{"a", "你好"}, {"b", "世界"}}, content)
	})

	t.Run("stray quote is repaired", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			chatOK(w, `[["a","你"好"],["b","世界"]]`)
		})
		c := testClient(t, fb.srv.URL)

		_, content, err := c.Translate(context.Background(), opts, input)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "你好"}, {"b", "世界"}}, content)
	})

	t.Run("truncated output is closed out", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			chatOK(w, `[["a","你好"], ["b","世界"`)
		})
		c := testClient(t, fb.srv.URL)

		_, content, err := c.Translate(context.Background(), opts, input)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "你好"}, {"b", "世界"}}, content)
	})

	t.Run("missing opening quote is repaired", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			chatOK(w, `[["a","你好",世界"]]`)
		})
		c := testClient(t, fb.srv.URL)

		_, content, err := c.Translate(context.Background(), opts, input)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "你好", "世界"}}, content)
	})

	t.Run("cardinality mismatch is tolerated", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			chatOK(w, `[["a","你好"]]`)
		})
		c := testClient(t, fb.srv.URL)

		_, content, err := c.Translate(context.Background(), opts, input)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "你好"}}, content)
	})

	t.Run("unparseable output fails", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			chatOK(w, "I am sorry, I can not translate that.")
		})
		c := testClient(t, fb.srv.URL)

		_, _, err := c.Translate(context.Background(), opts, input)
		require.Error(t, err)
		assert.Equal(t, 500, errors.Code(err))
	})
}

func TestKeywords(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		chatOK(w, "go, http, client")
	})
	c := testClient(t, fb.srv.URL)

	tokens, keywords, err := c.Keywords(context.Background(), "u1", "English", "some text about go http clients")
	require.NoError(t, err)
	assert.Equal(t, 30, tokens)
	assert.Equal(t, "go, http, client", keywords)
}

func TestSameShape(t *testing.T) {
	assert.True(t, sameShape(nil, nil))
	assert.True(t, sameShape([][]string{{"a"}}, [][]string{{"b"}}))
	assert.False(t, sameShape([][]string{{"a"}}, nil))
	assert.False(t, sameShape([][]string{{"a", "b"}}, [][]string{{"a"}}))
}
