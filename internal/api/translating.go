package api

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/glossahq/glossa/internal/llm"
	"github.com/glossahq/glossa/internal/store"
	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/language"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/segmenter"
)

type createTranslationRequest struct {
	GID      string `json:"gid" cbor:"gid" binding:"required"`
	CID      string `json:"cid" cbor:"cid" binding:"required"`
	Language string `json:"language" cbor:"language" binding:"required"`
	Version  int16  `json:"version" cbor:"version" binding:"min=1,max=10000"`
	Model    string `json:"model" cbor:"model"`
	Content  []byte `json:"content" cbor:"content" binding:"required"`
}

type createTranslationResult struct {
	CID              string `json:"cid" cbor:"cid"`
	DetectedLanguage string `json:"detected_language" cbor:"detected_language"`
}

// decodeContent decodes a CBOR content list.
func decodeContent(data []byte) ([]segmenter.Section, error) {
	var sections []segmenter.Section
	if err := cbor.Unmarshal(data, &sections); err != nil {
		return nil, errors.New(400, "Invalid content: %s", err.Error())
	}
	if len(sections) == 0 {
		return nil, errors.New(400, "Invalid content: empty")
	}
	return sections, nil
}

func (a *App) handleCreateTranslation(c *gin.Context) {
	req := &createTranslationRequest{}
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
	target := language.Normalize(req.Language)
	if target == language.Und {
		renderError(c, errors.New(400, "Unsupported language: %s", req.Language))
		return
	}
	model, err := llm.ParseModel(req.Model)
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
	observability.CtxKV(ctx).SetKvs(map[string]interface{}{
		"action":   "create_translating",
		"gid":      gid.String(),
		"cid":      cid.String(),
		"language": target,
		"version":  req.Version,
	})

	origin := a.Detect.Detect(segmenter.DetectString(content))
	if origin == target {
		renderError(c, errors.New(400, "No need to translate from '%s' to '%s'", origin, target))
		return
	}
	res := &createTranslationResult{CID: cid.String(), DetectedLanguage: origin}

	row, err := a.Store.GetTranslation(ctx, gid, cid, target, req.Version,
		[]string{"model", "updated_at", "error"})
	if err != nil && !stderrors.Is(err, database.ErrNotFound) {
		renderError(c, err)
		return
	}
	if err == nil && fresh(model.String(), row.Model, row.Error, row.UpdatedAt) {
		observability.CtxKV(ctx).Set("exists", true)
		renderResult(c, res)
		return
	}

	if err := a.Store.UpsertTranslation(ctx, &store.Translation{
		GID: gid, CID: cid, Language: target, Version: req.Version,
		Model: model.String(), UpdatedAt: nowMs(), Content: []byte{},
	}); err != nil {
		renderError(c, err)
		return
	}

	go a.translateJob(detach(ctx), ctxUser(c), model, gid, cid, target, req.Version, origin, content)
	renderResult(c, res)
}

// translateJob segments content, translates the units concurrently and
// commits the reassembled document. Progress lands on the artifact row
// after every finished unit.
func (a *App) translateJob(ctx context.Context, user string, model llm.Model,
	gid, cid store.ID, target string, version int16, origin string, content []segmenter.Section) {
	a.translatingJobs.Add(1)
	defer a.translatingJobs.Add(-1)

	log := a.Logger.With(map[string]interface{}{
		"target":   "translating",
		"gid":      gid.String(),
		"cid":      cid.String(),
		"language": target,
		"version":  version,
		"xid":      observability.CtxRequestID(ctx),
	})

	st, ht := model.TranslatingSegmentTokens()
	units := segmenter.Segment(content, a.Tokens, st, ht)
	log.Info("start_job", map[string]interface{}{"units": len(units), "model": model.String()})
	if len(units) == 0 {
		a.failTranslation(ctx, log, gid, cid, target, version, errors.New(400, "Invalid content: empty"))
		return
	}

	opts := llm.TranslateOptions{
		Model:      model,
		User:       user,
		OriginLang: language.Name(origin),
		TargetLang: language.Name(target),
	}

	var mu sync.Mutex
	done := 0
	var tokens int32
	results := make([][]segmenter.Section, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelWorks)
	for i := range units {
		i, unit := i, &units[i]
		g.Go(func() error {
			cctx, kv := observability.WithKV(gctx)
			kv.Set("unit", i)
			n, out, err := a.AI.Translate(cctx, opts, unit.TranslatingList())
			if err != nil {
				kv.Set("error", err.Error())
				log.Error("call_openai", kv.Fields())
				return err
			}
			log.Info("call_openai", kv.Fields())
			results[i] = unit.ReplaceTexts(out)

			mu.Lock()
			defer mu.Unlock()
			done++
			tokens += int32(n)
			cols := map[string]interface{}{
				"progress":   int8(done * 100 / len(units)),
				"updated_at": nowMs(),
				"tokens":     tokens,
			}
			if err := a.Store.UpdateTranslation(ctx, gid, cid, target, version, cols); err != nil {
				log.Warn("to_scylla", map[string]interface{}{"error": err.Error()})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.failTranslation(ctx, log, gid, cid, target, version, err)
		return
	}

	translated := make([]segmenter.Section, 0, len(content))
	for _, r := range results {
		translated = append(translated, r...)
	}
	data, err := cbor.Marshal(translated)
	if err != nil {
		a.failTranslation(ctx, log, gid, cid, target, version, err)
		return
	}
	if err := a.Store.UpdateTranslation(ctx, gid, cid, target, version, map[string]interface{}{
		"content":    data,
		"tokens":     tokens,
		"progress":   int8(100),
		"updated_at": nowMs(),
		"error":      "",
	}); err != nil {
		log.Error("to_scylla", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := a.Store.IncrTranslating(ctx, gid, int64(tokens)); err != nil {
		log.Warn("to_scylla", map[string]interface{}{"error": err.Error()})
	}
	log.Info("finish_job", map[string]interface{}{"tokens": tokens, "units": len(units)})
}

// failTranslation records a terminal job error on the artifact row.
func (a *App) failTranslation(ctx context.Context, log observability.Logger,
	gid, cid store.ID, target string, version int16, err error) {
	msg := errors.From(err).Message
	if uerr := a.Store.UpdateTranslation(ctx, gid, cid, target, version, map[string]interface{}{
		"updated_at": nowMs(),
		"error":      msg,
	}); uerr != nil {
		log.Error("to_scylla", map[string]interface{}{"error": uerr.Error()})
	}
	log.Error("finish_job", map[string]interface{}{"error": msg})
}

type getArtifactRequest struct {
	GID      string   `json:"gid" cbor:"gid" binding:"required"`
	CID      string   `json:"cid" cbor:"cid" binding:"required"`
	Language string   `json:"language" cbor:"language" binding:"required"`
	Version  int16    `json:"version" cbor:"version" binding:"min=1,max=10000"`
	Fields   []string `json:"fields" cbor:"fields"`
}

// parse resolves the request key. The language is normalized, not
// validated: reads of rows written under any code must keep working.
func (r *getArtifactRequest) parse() (gid, cid store.ID, lang string, err error) {
	if gid, err = store.ParseID(r.GID); err != nil {
		return
	}
	if cid, err = store.ParseID(r.CID); err != nil {
		return
	}
	lang = language.Normalize(r.Language)
	return
}

type translationBody struct {
	GID       string `json:"gid" cbor:"gid"`
	CID       string `json:"cid" cbor:"cid"`
	Language  string `json:"language" cbor:"language"`
	Version   int16  `json:"version" cbor:"version"`
	Model     string `json:"model" cbor:"model"`
	Progress  int8   `json:"progress" cbor:"progress"`
	UpdatedAt int64  `json:"updated_at" cbor:"updated_at"`
	Tokens    int32  `json:"tokens" cbor:"tokens"`
	Content   []byte `json:"content,omitempty" cbor:"content,omitempty"`
	Error     string `json:"error" cbor:"error"`
}

func (a *App) handleGetTranslation(c *gin.Context) {
	req := &getArtifactRequest{}
	if err := bind(c, req); err != nil {
		renderError(c, err)
		return
	}
	gid, cid, lang, err := req.parse()
	if err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()
	observability.CtxKV(ctx).SetKvs(map[string]interface{}{
		"action": "get_translating",
		"gid":    gid.String(),
		"cid":    cid.String(),
	})

	row, err := a.Store.GetTranslation(ctx, gid, cid, lang, req.Version, req.Fields)
	if stderrors.Is(err, database.ErrNotFound) {
		renderError(c, errors.New(404, "record not found"))
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}
	renderResult(c, &translationBody{
		GID:       row.GID.String(),
		CID:       row.CID.String(),
		Language:  row.Language,
		Version:   row.Version,
		Model:     row.Model,
		Progress:  row.Progress,
		UpdatedAt: row.UpdatedAt,
		Tokens:    row.Tokens,
		Content:   row.Content,
		Error:     row.Error,
	})
}
