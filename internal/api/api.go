// Package api is the HTTP surface of glossa: gin handlers that validate
// input, spawn background jobs and serve artifact rows, plus the jobs
// themselves.
package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/qdrant/go-client/qdrant"

	"github.com/glossahq/glossa/internal/llm"
	"github.com/glossahq/glossa/internal/store"
	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/segmenter"
)

// parallelWorks bounds concurrent LLM calls inside one job.
const parallelWorks = 3

// freshWindow is how long an error-free artifact row suppresses a new job
// for the same key and model.
const freshWindow = time.Hour

// AI is the slice of the LLM client the handlers use.
type AI interface {
	Translate(ctx context.Context, opts llm.TranslateOptions, input [][]string) (int, [][]string, error)
	Summarize(ctx context.Context, user, language, text string) (int, string, error)
	Keywords(ctx context.Context, user, language, text string) (int, string, error)
	Embed(ctx context.Context, user string, input []string) (int, [][]float32, error)
}

// Artifacts is the tabular model layer, implemented by store.Store.
type Artifacts interface {
	GetTranslation(ctx context.Context, gid, cid store.ID, language string, version int16, fields []string) (*store.Translation, error)
	UpsertTranslation(ctx context.Context, t *store.Translation) error
	UpdateTranslation(ctx context.Context, gid, cid store.ID, language string, version int16, cols map[string]interface{}) error

	GetSummary(ctx context.Context, gid, cid store.ID, language string, version int16, fields []string) (*store.Summary, error)
	UpsertSummary(ctx context.Context, m *store.Summary) error
	UpdateSummary(ctx context.Context, gid, cid store.ID, language string, version int16, cols map[string]interface{}) error

	GetEmbedding(ctx context.Context, id gocql.UUID, fields []string) (*store.Embedding, error)
	UpsertEmbedding(ctx context.Context, e *store.Embedding) error
	ListEmbeddingsByCID(ctx context.Context, cid, gid store.ID, language string, version int16, fields []string) ([]store.Embedding, error)

	IncrTranslating(ctx context.Context, uid store.ID, tokens int64) error
	IncrEmbedding(ctx context.Context, uid store.ID, tokens int64) error
}

// VectorDB is the point store, implemented by vectordb.Qdrant.
type VectorDB interface {
	AddPoints(ctx context.Context, points []*qdrant.PointStruct) error
	CopyToPublic(ctx context.Context, ids []string) error
	SearchPoints(ctx context.Context, vector []float32, filter *qdrant.Filter) ([]*qdrant.ScoredPoint, error)
	SearchPublicPoints(ctx context.Context, vector []float32, filter *qdrant.Filter) ([]*qdrant.ScoredPoint, error)
}

// Cache holds the ephemeral message translation documents.
type Cache interface {
	Create(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Update(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Detector reports the dominant language of a text as a 639-3 code.
type Detector interface {
	Detect(text string) string
}

// App bundles the shared clients every handler and job uses. All fields
// are set once at startup and never mutated.
type App struct {
	Name    string
	Version string
	Logger  observability.Logger
	Store   Artifacts
	Vector  VectorDB
	Cache   Cache
	AI      AI
	Detect  Detector
	Tokens  segmenter.TokensFn
	Metrics *database.Metrics

	// live job gauges, read by healthz and the shutdown countdown
	translatingJobs atomic.Int64
	embeddingJobs   atomic.Int64
}

// TranslatingJobs returns the number of live translation jobs, message
// translations included.
func (a *App) TranslatingJobs() int64 {
	return a.translatingJobs.Load()
}

// EmbeddingJobs returns the number of live embedding jobs, publish jobs
// included.
func (a *App) EmbeddingJobs() int64 {
	return a.embeddingJobs.Load()
}

// RegisterRoutes mounts every glossa endpoint on the engine.
func (a *App) RegisterRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(a.requestContext())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", a.handleVersion)
	router.GET("/healthz", a.handleHealthz)

	v1 := router.Group("/v1")
	v1.POST("/translating", a.handleCreateTranslation)
	v1.POST("/translating/get", a.handleGetTranslation)
	v1.GET("/translating/list_languages", a.handleListLanguages)
	v1.POST("/translating/detect_language", a.handleDetectLanguage)

	v1.POST("/summarizing", a.handleCreateSummary)
	v1.POST("/summarizing/get", a.handleGetSummary)

	v1.POST("/embedding", a.handleCreateEmbedding)
	v1.POST("/embedding/search", a.handleSearchEmbedding)
	v1.POST("/embedding/public", a.handlePublishEmbedding)

	v1.POST("/message_translating", a.handleCreateMessage)
	v1.POST("/message_translating/get", a.handleGetMessage)
}

// detach returns a background context for a spawned job carrying the
// request's log identity, so the job survives the client disconnecting.
func detach(ctx context.Context) context.Context {
	jctx := context.Background()
	if rid := observability.CtxRequestID(ctx); rid != "" {
		jctx = observability.WithRequestID(jctx, rid)
	}
	return jctx
}

// fresh reports whether an artifact row written by the same model is
// recent enough to serve as-is.
func fresh(model, rowModel, rowError string, updatedAt int64) bool {
	if rowModel != model || rowError != "" {
		return false
	}
	return time.Now().UnixMilli()-updatedAt < freshWindow.Milliseconds()
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
