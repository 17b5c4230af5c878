package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/require"

	"github.com/glossahq/glossa/internal/llm"
	"github.com/glossahq/glossa/internal/store"
	"github.com/glossahq/glossa/pkg/cache"
	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/segmenter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// wordTokens is the test tokenizer: one token per whitespace-separated
// word, so budgets are easy to reason about.
func wordTokens(s string) int {
	return len(strings.Fields(s))
}

type artifactKey struct {
	GID, CID, Language string
	Version            int16
}

// fakeStore is an in-memory Artifacts implementation recording every
// progress value written, so tests can check monotonicity.
type fakeStore struct {
	mu           sync.Mutex
	translations map[artifactKey]*store.Translation
	summaries    map[artifactKey]*store.Summary
	embeddings   map[gocql.UUID]*store.Embedding
	progress     map[artifactKey][]int8
	counters     map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		translations: map[artifactKey]*store.Translation{},
		summaries:    map[artifactKey]*store.Summary{},
		embeddings:   map[gocql.UUID]*store.Embedding{},
		progress:     map[artifactKey][]int8{},
		counters:     map[string]int64{},
	}
}

func akey(gid, cid store.ID, language string, version int16) artifactKey {
	return artifactKey{GID: gid.String(), CID: cid.String(), Language: language, Version: version}
}

func (f *fakeStore) GetTranslation(_ context.Context, gid, cid store.ID, language string, version int16, _ []string) (*store.Translation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.translations[akey(gid, cid, language, version)]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) UpsertTranslation(_ context.Context, t *store.Translation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	k := akey(t.GID, t.CID, t.Language, t.Version)
	f.translations[k] = &cp
	f.progress[k] = append(f.progress[k], t.Progress)
	return nil
}

func (f *fakeStore) UpdateTranslation(_ context.Context, gid, cid store.ID, language string, version int16, cols map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := akey(gid, cid, language, version)
	t, ok := f.translations[k]
	if !ok {
		return database.ErrNotFound
	}
	for c, v := range cols {
		switch c {
		case "model":
			t.Model = v.(string)
		case "progress":
			t.Progress = v.(int8)
			f.progress[k] = append(f.progress[k], t.Progress)
		case "updated_at":
			t.UpdatedAt = v.(int64)
		case "tokens":
			t.Tokens = v.(int32)
		case "content":
			t.Content = v.([]byte)
		case "error":
			t.Error = v.(string)
		default:
			return errors.New(400, "Invalid field: %s", c)
		}
	}
	return nil
}

func (f *fakeStore) GetSummary(_ context.Context, gid, cid store.ID, language string, version int16, _ []string) (*store.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.summaries[akey(gid, cid, language, version)]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) UpsertSummary(_ context.Context, m *store.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	k := akey(m.GID, m.CID, m.Language, m.Version)
	f.summaries[k] = &cp
	f.progress[k] = append(f.progress[k], m.Progress)
	return nil
}

func (f *fakeStore) UpdateSummary(_ context.Context, gid, cid store.ID, language string, version int16, cols map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := akey(gid, cid, language, version)
	m, ok := f.summaries[k]
	if !ok {
		return database.ErrNotFound
	}
	for c, v := range cols {
		switch c {
		case "model":
			m.Model = v.(string)
		case "progress":
			m.Progress = v.(int8)
			f.progress[k] = append(f.progress[k], m.Progress)
		case "updated_at":
			m.UpdatedAt = v.(int64)
		case "tokens":
			m.Tokens = v.(int32)
		case "summary":
			m.Summary = v.(string)
		case "error":
			m.Error = v.(string)
		default:
			return errors.New(400, "Invalid field: %s", c)
		}
	}
	return nil
}

func (f *fakeStore) GetEmbedding(_ context.Context, id gocql.UUID, _ []string) (*store.Embedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.embeddings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) UpsertEmbedding(_ context.Context, e *store.Embedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.embeddings[e.UUID] = &cp
	return nil
}

func (f *fakeStore) ListEmbeddingsByCID(_ context.Context, cid, gid store.ID, language string, version int16, _ []string) ([]store.Embedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Embedding
	for _, e := range f.embeddings {
		if e.CID == cid && e.GID == gid && e.Language == language && e.Version == version {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) IncrTranslating(_ context.Context, uid store.ID, tokens int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters["translating:"+uid.String()] += tokens
	return nil
}

func (f *fakeStore) IncrEmbedding(_ context.Context, uid store.ID, tokens int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters["embedding:"+uid.String()] += tokens
	return nil
}

func (f *fakeStore) translation(t *testing.T, gid, cid store.ID, language string, version int16) *store.Translation {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.translations[akey(gid, cid, language, version)]
	require.True(t, ok, "translation row missing")
	cp := *row
	return &cp
}

func (f *fakeStore) summary(t *testing.T, gid, cid store.ID, language string, version int16) *store.Summary {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.summaries[akey(gid, cid, language, version)]
	require.True(t, ok, "summary row missing")
	cp := *row
	return &cp
}

func (f *fakeStore) progressOf(gid, cid store.ID, language string, version int16) []int8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int8(nil), f.progress[akey(gid, cid, language, version)]...)
}

// fakeVector holds points in two in-memory collections. Search ignores
// the filter and scores nothing, which is enough for handler tests.
type fakeVector struct {
	mu      sync.Mutex
	private []*qdrant.PointStruct
	public  []*qdrant.PointStruct
}

func (f *fakeVector) AddPoints(_ context.Context, points []*qdrant.PointStruct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.private = append(f.private, points...)
	return nil
}

func (f *fakeVector) CopyToPublic(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for _, p := range f.private {
		if want[p.GetId().GetUuid()] {
			f.public = append(f.public, p)
		}
	}
	return nil
}

func scored(points []*qdrant.PointStruct) []*qdrant.ScoredPoint {
	out := make([]*qdrant.ScoredPoint, 0, len(points))
	for _, p := range points {
		out = append(out, &qdrant.ScoredPoint{Id: p.Id, Payload: p.Payload})
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func (f *fakeVector) SearchPoints(_ context.Context, _ []float32, _ *qdrant.Filter) ([]*qdrant.ScoredPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return scored(f.private), nil
}

func (f *fakeVector) SearchPublicPoints(_ context.Context, _ []float32, _ *qdrant.Filter) ([]*qdrant.ScoredPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return scored(f.public), nil
}

// fakeCache is an in-memory Cache with NX/XX semantics but no expiry.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Create(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = append([]byte(nil), value...)
	return true, nil
}

func (f *fakeCache) Update(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return cache.ErrNotFound
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// fakeAI counts calls and delegates to swappable functions. The defaults
// echo input back, which round-trips through ReplaceTexts unchanged.
type fakeAI struct {
	mu             sync.Mutex
	translateCalls int
	summarizeCalls int
	keywordCalls   int
	embedCalls     int

	translateFn func(input [][]string) (int, [][]string, error)
	summarizeFn func(text string) (int, string, error)
	keywordsFn  func(text string) (int, string, error)
	embedFn     func(input []string) (int, [][]float32, error)
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		translateFn: func(input [][]string) (int, [][]string, error) {
			return 10, input, nil
		},
		summarizeFn: func(text string) (int, string, error) {
			return 10, "summary of: " + text[:min(20, len(text))], nil
		},
		keywordsFn: func(string) (int, string, error) {
			return 5, "alpha, beta", nil
		},
		embedFn: func(input []string) (int, [][]float32, error) {
			vectors := make([][]float32, len(input))
			for i := range vectors {
				vectors[i] = []float32{float32(i), 1}
			}
			return 7 * len(input), vectors, nil
		},
	}
}

func (f *fakeAI) Translate(_ context.Context, _ llm.TranslateOptions, input [][]string) (int, [][]string, error) {
	f.mu.Lock()
	f.translateCalls++
	fn := f.translateFn
	f.mu.Unlock()
	return fn(input)
}

func (f *fakeAI) Summarize(_ context.Context, _, _, text string) (int, string, error) {
	f.mu.Lock()
	f.summarizeCalls++
	fn := f.summarizeFn
	f.mu.Unlock()
	return fn(text)
}

func (f *fakeAI) Keywords(_ context.Context, _, _, text string) (int, string, error) {
	f.mu.Lock()
	f.keywordCalls++
	fn := f.keywordsFn
	f.mu.Unlock()
	return fn(text)
}

func (f *fakeAI) Embed(_ context.Context, _ string, input []string) (int, [][]float32, error) {
	f.mu.Lock()
	f.embedCalls++
	fn := f.embedFn
	f.mu.Unlock()
	return fn(input)
}

func (f *fakeAI) calls() (translate, summarize, keywords, embed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.translateCalls, f.summarizeCalls, f.keywordCalls, f.embedCalls
}

type fakeDetect struct{ lang string }

func (f *fakeDetect) Detect(string) string { return f.lang }

type fixture struct {
	app    *App
	router *gin.Engine
	store  *fakeStore
	vector *fakeVector
	cache  *fakeCache
	ai     *fakeAI
	detect *fakeDetect
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  newFakeStore(),
		vector: &fakeVector{},
		cache:  newFakeCache(),
		ai:     newFakeAI(),
		detect: &fakeDetect{lang: "eng"},
	}
	f.app = &App{
		Name:    "glossa",
		Version: "test",
		Logger:  observability.NewNoopLogger(),
		Store:   f.store,
		Vector:  f.vector,
		Cache:   f.cache,
		AI:      f.ai,
		Detect:  f.detect,
		Tokens:  wordTokens,
	}
	f.router = gin.New()
	f.app.RegisterRoutes(f.router)
	return f
}

type response struct {
	code   int
	Result json.RawMessage `json:"result"`
	Error  *errors.Error   `json:"error"`
}

func (f *fixture) post(t *testing.T, path string, body interface{}) *response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

func (f *fixture) get(t *testing.T, path string) *response {
	t.Helper()
	return f.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) do(t *testing.T, req *http.Request) *response {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	res := &response{code: w.Code}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), res),
		"body: %s", w.Body.String())
	return res
}

func (r *response) result(t *testing.T, v interface{}) {
	t.Helper()
	require.Nil(t, r.Error, "unexpected error: %+v", r.Error)
	require.NoError(t, json.Unmarshal(r.Result, v))
}

func encodeSections(t *testing.T, sections []segmenter.Section) []byte {
	t.Helper()
	data, err := cbor.Marshal(sections)
	require.NoError(t, err)
	return data
}

// waitJobs blocks until every spawned job has released its gauge.
func (f *fixture) waitJobs(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.app.TranslatingJobs() == 0 && f.app.EmbeddingJobs() == 0
	}, 5*time.Second, 5*time.Millisecond)
}
