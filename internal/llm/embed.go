package llm

import (
	"context"
	"time"

	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/observability"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
	User  string   `json:"user,omitempty"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Usage apiUsage        `json:"usage"`
}

// Embed embeds up to 16 inputs in one call. Vectors are returned in input
// order.
func (c *Client) Embed(ctx context.Context, user string, input []string) (int, [][]float32, error) {
	body := &embeddingRequest{Model: EmbeddingModel, Input: input, User: user}

	kv := observability.CtxKV(ctx)
	index := randIndex()
	b := c.pick(EmbeddingModel, index)
	kv.Set("host", b.host)

	start := time.Now()
	res := &embeddingResponse{}
	err := c.request(ctx, b, b.urlFor(EmbeddingModel), body, res)
	if err != nil && retryable(err) {
		kv.Set("retry_because", err.Error())
		rb := c.pick(EmbeddingModel, index+1)
		kv.Set("retry_host", rb.host)
		if werr := c.retryWait(ctx, err, b, rb); werr != nil {
			return 0, nil, werr
		}
		res = &embeddingResponse{}
		err = c.request(ctx, rb, rb.urlFor(EmbeddingModel), body, res)
	}
	if err != nil {
		return 0, nil, err
	}

	elapsed := time.Since(start).Milliseconds()
	fields := map[string]interface{}{
		"elapsed":        elapsed,
		"prompt_tokens":  res.Usage.PromptTokens,
		"total_tokens":   res.Usage.TotalTokens,
		"embedding_size": len(res.Data),
	}
	if elapsed > 0 {
		fields["speed"] = int64(res.Usage.TotalTokens) * 1000 / elapsed
	}
	kv.SetKvs(fields)

	if len(res.Data) != len(input) {
		return 0, nil, errors.New(500, "embedding content array length not match, expected %d, got %d",
			len(input), len(res.Data))
	}

	vectors := make([][]float32, len(res.Data))
	for _, d := range res.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return 0, nil, errors.New(500, "unexpected embedding index: %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return res.Usage.TotalTokens, vectors, nil
}
