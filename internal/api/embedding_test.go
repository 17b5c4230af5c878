package api

import (
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossahq/glossa/internal/store"
	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/segmenter"
)

func TestCreateEmbeddingSinglePiece(t *testing.T) {
	f := newFixture(t)
	gid, cid := xid.New().String(), xid.New().String()
	gidID, cidID := mustID(t, gid), mustID(t, cid)

	res := f.post(t, "/v1/embedding", map[string]interface{}{
		"gid": gid, "cid": cid, "version": 1,
		"content": encodeSections(t, smallDocument()),
	})
	require.Equal(t, 200, res.code)
	var out createTranslationResult
	res.result(t, &out)
	assert.Equal(t, "eng", out.DetectedLanguage)

	require.Eventually(t, func() bool {
		f.vector.mu.Lock()
		defer f.vector.mu.Unlock()
		return len(f.vector.private) == 1
	}, 5*time.Second, 5*time.Millisecond)
	f.waitJobs(t)

	// row uuid is deterministic over (cid, language, ids)
	want := store.NewEmbedding(cidID, "eng", "a,b")
	row, err := f.store.GetEmbedding(t.Context(), want.UUID, nil)
	require.NoError(t, err)
	assert.Equal(t, gidID, row.GID)
	assert.Equal(t, int16(1), row.Version)
	var sections []segmenter.Section
	require.NoError(t, cbor.Unmarshal(row.Content, &sections))
	assert.Len(t, sections, 2)

	f.vector.mu.Lock()
	point := f.vector.private[0]
	f.vector.mu.Unlock()
	assert.Equal(t, want.UUID.String(), point.GetId().GetUuid())
	payload := point.GetPayload()
	assert.Equal(t, cid, payload["cid"].GetStringValue())
	assert.Equal(t, gid, payload["gid"].GetStringValue())
	assert.Equal(t, "eng", payload["lang"].GetStringValue())
}

func TestEmbedJobSkipsFailedGroup(t *testing.T) {
	f := newFixture(t)
	gid, cid := xid.New().String(), xid.New().String()
	gidID, cidID := mustID(t, gid), mustID(t, cid)

	// two groups: the separator closes a full unit, and the group token
	// budget forces a second group
	long := strings.TrimSpace(strings.Repeat("w ", 7500))
	doc := []segmenter.Section{
		{ID: "a", Texts: []string{long}},
		{ID: "b", Texts: []string{"short tail section"}},
	}

	calls := 0
	f.ai.embedFn = func(input []string) (int, [][]float32, error) {
		calls++
		if calls == 1 {
			return 0, nil, errors.New(500, "boom")
		}
		vectors := make([][]float32, len(input))
		for i := range vectors {
			vectors[i] = []float32{1}
		}
		return 5, vectors, nil
	}

	f.post(t, "/v1/embedding", map[string]interface{}{
		"gid": gid, "cid": cid, "version": 1,
		"content": encodeSections(t, doc),
	})
	require.Eventually(t, func() bool {
		f.store.mu.Lock()
		defer f.store.mu.Unlock()
		return len(f.store.embeddings) > 0
	}, 5*time.Second, 5*time.Millisecond)
	f.waitJobs(t)

	// the first group failed, the second one still landed
	rows, err := f.store.ListEmbeddingsByCID(t.Context(), cidID, gidID, "eng", 1, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].IDs)

	// the partial job still counts the tokens it spent
	f.store.mu.Lock()
	assert.Equal(t, int64(5), f.store.counters["embedding:"+gid])
	f.store.mu.Unlock()
}

func TestEmbedJobAllGroupsFailedSkipsCounter(t *testing.T) {
	f := newFixture(t)
	gid, cid := xid.New().String(), xid.New().String()

	f.ai.embedFn = func(_ []string) (int, [][]float32, error) {
		return 0, nil, errors.New(500, "boom")
	}

	f.post(t, "/v1/embedding", map[string]interface{}{
		"gid": gid, "cid": cid, "version": 1,
		"content": encodeSections(t, smallDocument()),
	})
	require.Eventually(t, func() bool {
		_, _, _, embed := f.ai.calls()
		return embed == 1
	}, 5*time.Second, 5*time.Millisecond)
	f.waitJobs(t)

	// nothing embedded, nothing counted
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Empty(t, f.store.embeddings)
	assert.NotContains(t, f.store.counters, "embedding:"+gid)
}

func TestSearchCheapSkip(t *testing.T) {
	f := newFixture(t)
	res := f.post(t, "/v1/embedding/search", map[string]interface{}{
		"input": "too short",
	})
	require.Equal(t, 200, res.code)

	var hits []searchHit
	res.result(t, &hits)
	assert.Empty(t, hits)
	_, _, _, embed := f.ai.calls()
	assert.Zero(t, embed)
}

// seedEmbedding runs a full embed job for one creation and returns its key.
func seedEmbedding(t *testing.T, f *fixture, text string) (gid, cid store.ID) {
	t.Helper()
	g, c := xid.New().String(), xid.New().String()
	f.post(t, "/v1/embedding", map[string]interface{}{
		"gid": g, "cid": c, "version": 1,
		"content": encodeSections(t, []segmenter.Section{{ID: "a", Texts: []string{text}}}),
	})
	gid, cid = mustID(t, g), mustID(t, c)
	require.Eventually(t, func() bool {
		rows, err := f.store.ListEmbeddingsByCID(t.Context(), cid, gid, "eng", 1, nil)
		return err == nil && len(rows) == 1
	}, 5*time.Second, 5*time.Millisecond)
	f.waitJobs(t)
	return gid, cid
}

func TestSearchPrivateAndPublish(t *testing.T) {
	f := newFixture(t)
	gid, cid := seedEmbedding(t, f, "some document body text")

	query := map[string]interface{}{
		"input": "what does the document body say about text",
		"gid":   gid.String(),
	}
	res := f.post(t, "/v1/embedding/search", query)
	require.Equal(t, 200, res.code)
	var hits []searchHit
	res.result(t, &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, cid.String(), hits[0].CID)
	assert.Equal(t, gid.String(), hits[0].GID)
	assert.Equal(t, "eng", hits[0].Language)

	// without a gid the search goes public, which is empty pre-publish
	public := map[string]interface{}{"input": query["input"]}
	res = f.post(t, "/v1/embedding/search", public)
	res.result(t, &hits)
	assert.Empty(t, hits)

	res = f.post(t, "/v1/embedding/public", map[string]interface{}{
		"gid": gid.String(), "cid": cid.String(), "language": "eng", "version": 1,
	})
	require.Equal(t, 200, res.code)
	require.Eventually(t, func() bool {
		f.vector.mu.Lock()
		defer f.vector.mu.Unlock()
		return len(f.vector.public) == 1
	}, 5*time.Second, 5*time.Millisecond)
	f.waitJobs(t)

	res = f.post(t, "/v1/embedding/search", public)
	res.result(t, &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, cid.String(), hits[0].CID)
}

func TestSearchDedupesByCID(t *testing.T) {
	f := newFixture(t)
	g, c := xid.New().String(), xid.New().String()
	gid, cid := mustID(t, g), mustID(t, c)

	// two units of the same creation, the separator splits them
	long := strings.TrimSpace(strings.Repeat("w ", 700))
	f.post(t, "/v1/embedding", map[string]interface{}{
		"gid": g, "cid": c, "version": 1,
		"content": encodeSections(t, []segmenter.Section{
			{ID: "a", Texts: []string{long}},
			{ID: segmenter.Separator, Texts: []string{}},
			{ID: "b", Texts: []string{long}},
		}),
	})
	require.Eventually(t, func() bool {
		rows, err := f.store.ListEmbeddingsByCID(t.Context(), cid, gid, "eng", 1, nil)
		return err == nil && len(rows) == 2
	}, 5*time.Second, 5*time.Millisecond)
	f.waitJobs(t)

	res := f.post(t, "/v1/embedding/search", map[string]interface{}{
		"input": "find me the words in this long creation",
		"gid":   g,
	})
	require.Equal(t, 200, res.code)
	var hits []searchHit
	res.result(t, &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, c, hits[0].CID)
}

func TestPublishUnknownCreation(t *testing.T) {
	f := newFixture(t)
	res := f.post(t, "/v1/embedding/public", map[string]interface{}{
		"gid": xid.New().String(), "cid": xid.New().String(), "language": "eng", "version": 1,
	})
	assert.Equal(t, 404, res.code)
}
