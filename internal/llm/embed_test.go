package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossahq/glossa/pkg/errors"
)

func TestEmbed(t *testing.T) {
	input := []string{"hello", "world"}

	t.Run("vectors follow input order", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			assert.Equal(t, "/openai/deployments/text-embedding-ada-002/embeddings", r.URL.Path)
			// small bodies are posted uncompressed
			assert.Empty(t, r.Header.Get("Content-Encoding"))

			var req embeddingRequest
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, EmbeddingModel, req.Model)
			assert.Equal(t, input, req.Input)
			assert.Equal(t, "u1", req.User)

			writeJSON(w, 200, &embeddingResponse{
				Data: []embeddingData{
					{Index: 1, Embedding: []float32{0.2, 0.2}},
					{Index: 0, Embedding: []float32{0.1, 0.1}},
				},
				Usage: apiUsage{PromptTokens: 4, TotalTokens: 4},
			})
		})
		c := testClient(t, fb.srv.URL)

		tokens, vectors, err := c.Embed(context.Background(), "u1", input)
		require.NoError(t, err)
		assert.Equal(t, 4, tokens)
		assert.Equal(t, [][]float32{{0.1, 0.1}, {0.2, 0.2}}, vectors)
	})

	t.Run("count mismatch fails", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			writeJSON(w, 200, &embeddingResponse{
				Data:  []embeddingData{{Index: 0, Embedding: []float32{0.1}}},
				Usage: apiUsage{PromptTokens: 4, TotalTokens: 4},
			})
		})
		c := testClient(t, fb.srv.URL)

		_, _, err := c.Embed(context.Background(), "u1", input)
		require.Error(t, err)
		assert.Equal(t, 500, errors.Code(err))
		assert.Contains(t, err.Error(), "embedding content array length not match, expected 2, got 1")
	})

	t.Run("out of range index fails", func(t *testing.T) {
		fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			writeJSON(w, 200, &embeddingResponse{
				Data: []embeddingData{
					{Index: 0, Embedding: []float32{0.1}},
					{Index: 5, Embedding: []float32{0.2}},
				},
			})
		})
		c := testClient(t, fb.srv.URL)

		_, _, err := c.Embed(context.Background(), "u1", input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected embedding index: 5")
	})

	t.Run("failover on gateway error", func(t *testing.T) {
		bad := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			writeJSON(w, 502, json.RawMessage(`{"error":"bad gateway"}`))
		})
		good := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
			writeJSON(w, 200, &embeddingResponse{
				Data:  []embeddingData{{Index: 0, Embedding: []float32{0.1}}, {Index: 1, Embedding: []float32{0.2}}},
				Usage: apiUsage{TotalTokens: 4},
			})
		})

		c := testClient(t, bad.srv.URL, good.srv.URL)
		_, vectors, err := c.Embed(context.Background(), "u1", input)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0.1}, {0.2}}, vectors)
		assert.Equal(t, int32(1), good.hits.Load())
	})
}
