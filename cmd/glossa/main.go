// glossa is the multilingual content processing service: translation,
// summarization and embedding of structured documents through LLM
// backends, with artifacts in Scylla and vectors in Qdrant.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/glossahq/glossa/internal/api"
	"github.com/glossahq/glossa/internal/config"
	"github.com/glossahq/glossa/internal/llm"
	"github.com/glossahq/glossa/internal/store"
	"github.com/glossahq/glossa/pkg/cache"
	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/language"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/tokenizer"
	"github.com/glossahq/glossa/pkg/vectordb"
)

const name = "glossa"

// version is stamped by the build, -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(name).Fatalf("failed to load config: %s", err)
	}
	observability.SetLevel(cfg.Log.Level)
	logger := observability.NewLogger(name)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := tokenizer.Preload(); err != nil {
		logger.Fatalf("failed to load tokenizer: %s", err)
	}

	ctx := context.Background()

	cfg.Scylla.Keyspace = cfg.Keyspace()
	scylla, err := database.New(cfg.Scylla)
	if err != nil {
		logger.Fatalf("failed to connect to scylla: %s", err)
	}
	defer scylla.Close()

	qd, err := vectordb.New(ctx, cfg.Qdrant, cfg.Keyspace())
	if err != nil {
		logger.Fatalf("failed to connect to qdrant: %s", err)
	}
	defer func() { _ = qd.Close() }()

	redis, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %s", err)
	}
	defer func() { _ = redis.Close() }()

	ai, err := llm.New(cfg.AI, version)
	if err != nil {
		logger.Fatalf("failed to build llm client: %s", err)
	}

	detector := language.NewLazyDetector()
	if cfg.IsProduction() {
		detector = language.NewDetector()
	}

	app := &api.App{
		Name:    name,
		Version: version,
		Logger:  logger,
		Store:   store.New(scylla),
		Vector:  qd,
		Cache:   redis,
		AI:      ai,
		Detect:  detector,
		Tokens:  tokenizer.Len,
		Metrics: scylla.Metrics(),
	}

	router := gin.New()
	app.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		var err error
		if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// let running jobs finish before tearing the clients down, up to the
	// configured number of seconds
	for i := cfg.Server.GracefulShutdown; i > 0; i-- {
		tj, ej := app.TranslatingJobs(), app.EmbeddingJobs()
		if tj <= 0 && ej <= 0 {
			break
		}
		logger.Info("waiting for jobs", map[string]interface{}{
			"translating_tasks": tj,
			"embedding_tasks":   ej,
			"seconds_left":      i,
		})
		time.Sleep(time.Second)
	}

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Errorf("shutdown: %s", err)
	}
	logger.Infof("bye")
}
