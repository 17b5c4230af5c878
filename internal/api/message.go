package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/glossahq/glossa/internal/llm"
	"github.com/glossahq/glossa/pkg/cache"
	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/language"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/segmenter"
)

// messageTTL bounds the lifetime of a message translation document. The
// key doubles as the job lock, so updates never extend it.
const messageTTL = 10 * time.Minute

// messageDoc is the cache document of one message translation.
type messageDoc struct {
	Model    string `json:"model" cbor:"model"`
	Progress int8   `json:"progress" cbor:"progress"`
	Tokens   int32  `json:"tokens" cbor:"tokens"`
	Error    string `json:"error" cbor:"error"`
	Content  []byte `json:"content,omitempty" cbor:"content,omitempty"`
}

func messageKey(id, lang string, version int16) string {
	return fmt.Sprintf("MT:%s:%s:%d", id, lang, version)
}

type createMessageRequest struct {
	ID           string `json:"id" cbor:"id" binding:"required"`
	Language     string `json:"language" cbor:"language" binding:"required"`
	Version      int16  `json:"version" cbor:"version" binding:"min=1,max=10000"`
	FromLanguage string `json:"from_language" cbor:"from_language"`
	Model        string `json:"model" cbor:"model"`
	Context      string `json:"context" cbor:"context"`
	Content      []byte `json:"content" cbor:"content" binding:"required"`
}

func (a *App) handleCreateMessage(c *gin.Context) {
	req := &createMessageRequest{}
	if err := bind(c, req); err != nil {
		renderError(c, err)
		return
	}

	id, err := xid.FromString(req.ID)
	if err != nil || id.String() != req.ID {
		renderError(c, errors.New(400, "invalid xid: %s", req.ID))
		return
	}
	target := language.Normalize(req.Language)
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

	from := language.Normalize(req.FromLanguage)
	if req.FromLanguage == "" {
		from = a.Detect.Detect(segmenter.DetectString(content))
	}
	if from == target || from == language.Und || target == language.Und {
		renderError(c, errors.New(400, "can not translate from '%s' to '%s'", from, target))
		return
	}

	ctx := c.Request.Context()
	key := messageKey(id.String(), target, req.Version)
	observability.CtxKV(ctx).SetKvs(map[string]interface{}{
		"action":   "create_message_translating",
		"id":       id.String(),
		"language": target,
		"version":  req.Version,
	})

	if raw, err := a.Cache.Get(ctx, key); err == nil {
		observability.CtxKV(ctx).Set("exists", true)
		renderMessageDoc(c, raw)
		return
	} else if !stderrors.Is(err, cache.ErrNotFound) {
		renderError(c, err)
		return
	}

	doc := &messageDoc{Model: model.String()}
	raw, err := cbor.Marshal(doc)
	if err != nil {
		renderError(c, err)
		return
	}
	ok, err := a.Cache.Create(ctx, key, raw, messageTTL)
	if err != nil {
		renderError(c, err)
		return
	}
	if !ok {
		// lost the creation race, serve the winner's document
		observability.CtxKV(ctx).Set("exists", true)
		raw, err := a.Cache.Get(ctx, key)
		if err != nil {
			renderError(c, err)
			return
		}
		renderMessageDoc(c, raw)
		return
	}

	go a.messageJob(detach(ctx), key, doc, llm.TranslateOptions{
		Model:      model,
		User:       ctxUser(c),
		Context:    req.Context,
		OriginLang: language.Name(from),
		TargetLang: language.Name(target),
	}, content)
	renderResult(c, doc)
}

// messageJob translates a message document held in the cache. Every state
// change rewrites the whole document under the creation TTL.
func (a *App) messageJob(ctx context.Context, key string, doc *messageDoc,
	opts llm.TranslateOptions, content []segmenter.Section) {
	a.translatingJobs.Add(1)
	defer a.translatingJobs.Add(-1)

	log := a.Logger.With(map[string]interface{}{
		"target": "message_translating",
		"key":    key,
		"xid":    observability.CtxRequestID(ctx),
	})

	st, ht := opts.Model.TranslatingSegmentTokens()
	units := segmenter.Segment(content, a.Tokens, st, ht)
	log.Info("start_job", map[string]interface{}{"units": len(units), "model": opts.Model.String()})
	if len(units) == 0 {
		a.failMessage(ctx, log, key, doc, errors.New(400, "Invalid content: empty"))
		return
	}

	var mu sync.Mutex
	done := 0
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
			doc.Tokens += int32(n)
			doc.Progress = int8(done * 100 / len(units))
			if err := a.updateMessage(ctx, key, doc); err != nil {
				log.Warn("to_redis", map[string]interface{}{"error": err.Error()})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.failMessage(ctx, log, key, doc, err)
		return
	}

	translated := make([]segmenter.Section, 0, len(content))
	for _, r := range results {
		translated = append(translated, r...)
	}
	data, err := cbor.Marshal(translated)
	if err != nil {
		a.failMessage(ctx, log, key, doc, err)
		return
	}
	doc.Content = data
	doc.Progress = 100
	doc.Error = ""
	if err := a.updateMessage(ctx, key, doc); err != nil {
		log.Error("to_redis", map[string]interface{}{"error": err.Error()})
		return
	}
	log.Info("finish_job", map[string]interface{}{"tokens": doc.Tokens, "units": len(units)})
}

func (a *App) updateMessage(ctx context.Context, key string, doc *messageDoc) error {
	raw, err := cbor.Marshal(doc)
	if err != nil {
		return err
	}
	return a.Cache.Update(ctx, key, raw)
}

func (a *App) failMessage(ctx context.Context, log observability.Logger,
	key string, doc *messageDoc, err error) {
	doc.Error = errors.From(err).Message
	doc.Progress = 0
	if uerr := a.updateMessage(ctx, key, doc); uerr != nil {
		log.Error("to_redis", map[string]interface{}{"error": uerr.Error()})
	}
	log.Error("finish_job", map[string]interface{}{"error": doc.Error})
}

type getMessageRequest struct {
	ID       string `json:"id" cbor:"id" binding:"required"`
	Language string `json:"language" cbor:"language" binding:"required"`
	Version  int16  `json:"version" cbor:"version" binding:"min=1,max=10000"`
}

func (a *App) handleGetMessage(c *gin.Context) {
	req := &getMessageRequest{}
	if err := bind(c, req); err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := messageKey(req.ID, language.Normalize(req.Language), req.Version)
	observability.CtxKV(ctx).SetKvs(map[string]interface{}{
		"action": "get_message_translating",
		"key":    key,
	})

	raw, err := a.Cache.Get(ctx, key)
	if stderrors.Is(err, cache.ErrNotFound) {
		renderError(c, errors.New(404, "%s", err.Error()))
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}
	renderMessageDoc(c, raw)
}

func renderMessageDoc(c *gin.Context, raw []byte) {
	doc := &messageDoc{}
	if err := cbor.Unmarshal(raw, doc); err != nil {
		renderError(c, errors.New(500, "%s", err.Error()))
		return
	}
	renderResult(c, doc)
}
