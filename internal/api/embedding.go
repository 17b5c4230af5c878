package api

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/glossahq/glossa/internal/store"
	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/language"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/segmenter"
	"github.com/glossahq/glossa/pkg/vectordb"
)

// queries shorter than this return nothing without touching the models
const minSearchTokens = 5

type createEmbeddingRequest struct {
	GID     string `json:"gid" cbor:"gid" binding:"required"`
	CID     string `json:"cid" cbor:"cid" binding:"required"`
	Version int16  `json:"version" cbor:"version" binding:"min=1,max=10000"`
	Content []byte `json:"content" cbor:"content" binding:"required"`
}

func (a *App) handleCreateEmbedding(c *gin.Context) {
	req := &createEmbeddingRequest{}
	if err := bind(c, req); err != nil {
		renderError(c, err)
		return
	}

	gid, err := store.ParseID(req.GID)
	if err != nil {
		renderError(c, err)
		return
	}
	cid, err := store.ParseID(req.CID)
	if err != nil {
		renderError(c, err)
		return
	}
	content, err := decodeContent(req.Content)
	if err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()
	lang := a.Detect.Detect(segmenter.DetectString(content))
	observability.CtxKV(ctx).SetKvs(map[string]interface{}{
		"action":   "create_embedding",
		"gid":      gid.String(),
		"cid":      cid.String(),
		"language": lang,
		"version":  req.Version,
	})

	go a.embedJob(detach(ctx), ctxUser(c), gid, cid, lang, req.Version, content)
	renderResult(c, &createTranslationResult{CID: cid.String(), DetectedLanguage: lang})
}

// embedJob embeds the document group by group. A failed group is skipped,
// not fatal: the uuids are deterministic, so a re-run fills the holes.
func (a *App) embedJob(ctx context.Context, user string,
	gid, cid store.ID, lang string, version int16, content []segmenter.Section) {
	a.embeddingJobs.Add(1)
	defer a.embeddingJobs.Add(-1)

	log := a.Logger.With(map[string]interface{}{
		"target":   "embedding",
		"gid":      gid.String(),
		"cid":      cid.String(),
		"language": lang,
		"version":  version,
		"xid":      observability.CtxRequestID(ctx),
	})

	groups := segmenter.SegmentForEmbedding(content, a.Tokens)
	log.Info("start_job", map[string]interface{}{"groups": len(groups)})

	var tokens int64
	embedded := 0
	for gi, group := range groups {
		inputs := make([]string, 0, len(group))
		for i := range group {
			inputs = append(inputs, group[i].EmbeddingString())
		}

		cctx, kv := observability.WithKV(ctx)
		kv.Set("group", gi)
		n, vectors, err := a.AI.Embed(cctx, user, inputs)
		if err != nil {
			kv.Set("error", err.Error())
			log.Error("call_openai", kv.Fields())
			continue
		}
		log.Info("call_openai", kv.Fields())
		tokens += int64(n)
		embedded++

		for i := range group {
			unit := &group[i]
			data, err := cbor.Marshal(unit.Content)
			if err != nil {
				log.Error("to_scylla", map[string]interface{}{"error": err.Error()})
				continue
			}
			e := store.NewEmbedding(cid, lang, strings.Join(unit.IDs(), ","))
			e.GID = gid
			e.Version = version
			e.Content = data
			if err := a.Store.UpsertEmbedding(ctx, e); err != nil {
				log.Error("to_scylla", map[string]interface{}{"uuid": e.UUID.String(), "error": err.Error()})
				continue
			}
			if err := a.Vector.AddPoints(ctx, []*qdrant.PointStruct{e.Point(vectors[i])}); err != nil {
				log.Error("to_qdrant", map[string]interface{}{"uuid": e.UUID.String(), "error": err.Error()})
			}
		}
	}

	// a job where every group failed did no work worth counting
	if embedded > 0 {
		if err := a.Store.IncrEmbedding(ctx, gid, tokens); err != nil {
			log.Warn("to_scylla", map[string]interface{}{"error": err.Error()})
		}
	}
	log.Info("finish_job", map[string]interface{}{"tokens": tokens, "groups": len(groups)})
}

type searchEmbeddingRequest struct {
	Input    string `json:"input" cbor:"input" binding:"required"`
	GID      string `json:"gid" cbor:"gid"`
	Language string `json:"language" cbor:"language"`
	CID      string `json:"cid" cbor:"cid"`
	Public   bool   `json:"public" cbor:"public"`
}

type searchHit struct {
	GID      string `json:"gid" cbor:"gid"`
	CID      string `json:"cid" cbor:"cid"`
	Language string `json:"language" cbor:"language"`
	Version  int16  `json:"version" cbor:"version"`
}

func (a *App) handleSearchEmbedding(c *gin.Context) {
	req := &searchEmbeddingRequest{}
	if err := bind(c, req); err != nil {
		renderError(c, err)
		return
	}

	query := strings.Join(strings.Fields(req.Input), " ")
	if query == "" {
		renderError(c, errors.New(400, "Invalid input: empty"))
		return
	}

	ctx := c.Request.Context()
	kv := observability.CtxKV(ctx)
	kv.Set("action", "search_embedding")

	hits := []searchHit{}
	if a.Tokens(query) < minSearchTokens {
		kv.Set("cheap_skip", true)
		renderResult(c, hits)
		return
	}

	_, vectors, err := a.AI.Embed(ctx, ctxUser(c), []string{query})
	if err != nil {
		renderError(c, err)
		return
	}

	var conds []*qdrant.Condition
	if req.GID != "" {
		gid, err := store.ParseID(req.GID)
		if err != nil {
			renderError(c, err)
			return
		}
		conds = append(conds, vectordb.MatchText("gid", gid.String()))
	}
	if req.Language != "" {
		conds = append(conds, vectordb.MatchText("lang", language.Normalize(req.Language)))
	}
	if req.CID != "" {
		cid, err := store.ParseID(req.CID)
		if err != nil {
			renderError(c, err)
			return
		}
		conds = append(conds, vectordb.MatchText("cid", cid.String()))
	}
	var filter *qdrant.Filter
	if len(conds) > 0 {
		filter = &qdrant.Filter{Must: conds}
	}

	// without a group to scope the query, only published points are fair
	// game
	var points []*qdrant.ScoredPoint
	if req.GID != "" && !req.Public {
		points, err = a.Vector.SearchPoints(ctx, vectors[0], filter)
	} else {
		kv.Set("public", true)
		points, err = a.Vector.SearchPublicPoints(ctx, vectors[0], filter)
	}
	if err != nil {
		renderError(c, err)
		return
	}

	seen := make(map[string]bool, len(points))
	for _, p := range points {
		id, err := uuid.Parse(p.GetId().GetUuid())
		if err != nil {
			renderError(c, errors.New(500, "Invalid ScoredPoint id from result"))
			return
		}
		row, err := a.Store.GetEmbedding(ctx, gocql.UUID(id), []string{"gid", "cid", "language", "version"})
		if stderrors.Is(err, database.ErrNotFound) {
			// stale point, its row is gone
			continue
		}
		if err != nil {
			renderError(c, err)
			return
		}
		if seen[row.CID.String()] {
			continue
		}
		seen[row.CID.String()] = true
		hits = append(hits, searchHit{
			GID:      row.GID.String(),
			CID:      row.CID.String(),
			Language: row.Language,
			Version:  row.Version,
		})
	}
	kv.Set("hits", len(hits))
	renderResult(c, hits)
}

type publishEmbeddingRequest struct {
	GID      string `json:"gid" cbor:"gid" binding:"required"`
	CID      string `json:"cid" cbor:"cid" binding:"required"`
	Language string `json:"language" cbor:"language" binding:"required"`
	Version  int16  `json:"version" cbor:"version" binding:"min=1,max=10000"`
}

func (a *App) handlePublishEmbedding(c *gin.Context) {
	req := &publishEmbeddingRequest{}
	if err := bind(c, req); err != nil {
		renderError(c, err)
		return
	}
	gid, err := store.ParseID(req.GID)
	if err != nil {
		renderError(c, err)
		return
	}
	cid, err := store.ParseID(req.CID)
	if err != nil {
		renderError(c, err)
		return
	}
	lang := language.Normalize(req.Language)

	ctx := c.Request.Context()
	observability.CtxKV(ctx).SetKvs(map[string]interface{}{
		"action": "publish_embedding",
		"gid":    gid.String(),
		"cid":    cid.String(),
	})

	rows, err := a.Store.ListEmbeddingsByCID(ctx, cid, gid, lang, req.Version, []string{"uuid"})
	if err != nil {
		renderError(c, err)
		return
	}
	if len(rows) == 0 {
		renderError(c, errors.New(404, "record not found"))
		return
	}
	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].UUID.String())
	}

	go a.publishJob(detach(ctx), gid, cid, ids)
	renderResult(c, map[string]interface{}{"units": len(ids)})
}

// publishJob copies the creation's points into the public collection.
func (a *App) publishJob(ctx context.Context, gid, cid store.ID, ids []string) {
	a.embeddingJobs.Add(1)
	defer a.embeddingJobs.Add(-1)

	log := a.Logger.With(map[string]interface{}{
		"target": "embedding",
		"gid":    gid.String(),
		"cid":    cid.String(),
		"xid":    observability.CtxRequestID(ctx),
	})
	log.Info("start_job", map[string]interface{}{"action": "publish", "units": len(ids)})

	if err := a.Vector.CopyToPublic(ctx, ids); err != nil {
		log.Error("to_qdrant", map[string]interface{}{"error": err.Error()})
		return
	}
	log.Info("finish_job", map[string]interface{}{"action": "publish", "units": len(ids)})
}
