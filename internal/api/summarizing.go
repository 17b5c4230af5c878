package api

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/glossahq/glossa/internal/store"
	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/language"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/segmenter"
)

// pieces this small skip the per-piece summarization call
const smallPieceTokens = 100

type createSummaryResult struct {
	CID      string `json:"cid" cbor:"cid"`
	Language string `json:"language" cbor:"language"`
}

func (a *App) handleCreateSummary(c *gin.Context) {
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
	lang := language.Normalize(req.Language)
	if lang == language.Und {
		renderError(c, errors.New(400, "Unsupported language: %s", req.Language))
		return
	}
	content, err := decodeContent(req.Content)
	if err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()
	observability.CtxKV(ctx).SetKvs(map[string]interface{}{
		"action":   "create_summarizing",
		"gid":      gid.String(),
		"cid":      cid.String(),
		"language": lang,
		"version":  req.Version,
	})
	res := &createSummaryResult{CID: cid.String(), Language: lang}

	row, err := a.Store.GetSummary(ctx, gid, cid, lang, req.Version,
		[]string{"model", "updated_at", "error"})
	if err != nil && !stderrors.Is(err, database.ErrNotFound) {
		renderError(c, err)
		return
	}
	// the summarization model is fixed, the stored model only has to agree
	// with itself
	if err == nil && fresh(row.Model, row.Model, row.Error, row.UpdatedAt) {
		observability.CtxKV(ctx).Set("exists", true)
		renderResult(c, res)
		return
	}

	if err := a.Store.UpsertSummary(ctx, &store.Summary{
		GID: gid, CID: cid, Language: lang, Version: req.Version,
		Model: "gpt-3.5", UpdatedAt: nowMs(),
	}); err != nil {
		renderError(c, err)
		return
	}

	go a.summarizeJob(detach(ctx), ctxUser(c), gid, cid, lang, req.Version, content)
	renderResult(c, res)
}

// summarizeJob condenses the document into one summary with a leading
// keyword line. Small single-piece documents skip the model entirely.
func (a *App) summarizeJob(ctx context.Context, user string,
	gid, cid store.ID, lang string, version int16, content []segmenter.Section) {
	a.translatingJobs.Add(1)
	defer a.translatingJobs.Add(-1)

	log := a.Logger.With(map[string]interface{}{
		"target":   "summarizing",
		"gid":      gid.String(),
		"cid":      cid.String(),
		"language": lang,
		"version":  version,
		"xid":      observability.CtxRequestID(ctx),
	})

	pieces := segmenter.SegmentText(content, a.Tokens)
	log.Info("start_job", map[string]interface{}{"pieces": len(pieces)})

	langName := language.Name(lang)
	var tokens int32

	var body string
	switch {
	case len(pieces) == 0:
		body = ""
	case len(pieces) == 1 && a.Tokens(pieces[0]) <= smallPieceTokens:
		body = strings.ReplaceAll(pieces[0], "\n", ". ")
	default:
		summaries := make([]string, len(pieces))
		var mu sync.Mutex
		done := 0

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelWorks)
		for i := range pieces {
			i, piece := i, pieces[i]
			g.Go(func() error {
				if a.Tokens(piece) <= smallPieceTokens {
					summaries[i] = piece
				} else {
					cctx, kv := observability.WithKV(gctx)
					kv.Set("piece", i)
					n, s, err := a.AI.Summarize(cctx, user, langName, piece)
					if err != nil {
						kv.Set("error", err.Error())
						log.Error("call_openai", kv.Fields())
						return err
					}
					log.Info("call_openai", kv.Fields())
					summaries[i] = s
					mu.Lock()
					tokens += int32(n)
					mu.Unlock()
				}

				mu.Lock()
				defer mu.Unlock()
				done++
				cols := map[string]interface{}{
					"progress":   int8(done * 100 / (len(pieces) + 1)),
					"updated_at": nowMs(),
					"tokens":     tokens,
				}
				if err := a.Store.UpdateSummary(ctx, gid, cid, lang, version, cols); err != nil {
					log.Warn("to_scylla", map[string]interface{}{"error": err.Error()})
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			a.failSummary(ctx, log, gid, cid, lang, version, err)
			return
		}

		if len(summaries) == 1 {
			body = summaries[0]
			break
		}
		// keep the head and tail, drop middles until the combined text
		// fits one summarization call
		total := func() int {
			t := 0
			for _, s := range summaries {
				t += a.Tokens(s)
			}
			return t
		}
		for len(summaries) > 2 && total() > segmenter.SummarizeHighTokens {
			mid := len(summaries) / 2
			summaries = append(summaries[:mid], summaries[mid+1:]...)
		}

		cctx, kv := observability.WithKV(ctx)
		kv.Set("combine", len(summaries))
		n, s, err := a.AI.Summarize(cctx, user, langName, strings.Join(summaries, "\n"))
		if err != nil {
			kv.Set("error", err.Error())
			log.Error("call_openai", kv.Fields())
			a.failSummary(ctx, log, gid, cid, lang, version, err)
			return
		}
		log.Info("call_openai", kv.Fields())
		tokens += int32(n)
		body = s
	}

	summary := body
	if body != "" {
		cctx, kv := observability.WithKV(ctx)
		n, csv, err := a.AI.Keywords(cctx, user, langName, body)
		if err != nil {
			// a missing keyword line is not worth failing the job over
			kv.Set("error", err.Error())
			log.Warn("call_openai", kv.Fields())
		} else {
			log.Info("call_openai", kv.Fields())
			tokens += int32(n)
			summary = cleanKeywords(csv) + "\n" + body
		}
	}

	if err := a.Store.UpdateSummary(ctx, gid, cid, lang, version, map[string]interface{}{
		"summary":    summary,
		"tokens":     tokens,
		"progress":   int8(100),
		"updated_at": nowMs(),
		"error":      "",
	}); err != nil {
		log.Error("to_scylla", map[string]interface{}{"error": err.Error()})
		return
	}
	log.Info("finish_job", map[string]interface{}{"tokens": tokens, "pieces": len(pieces)})
}

func (a *App) failSummary(ctx context.Context, log observability.Logger,
	gid, cid store.ID, lang string, version int16, err error) {
	msg := errors.From(err).Message
	if uerr := a.Store.UpdateSummary(ctx, gid, cid, lang, version, map[string]interface{}{
		"updated_at": nowMs(),
		"error":      msg,
	}); uerr != nil {
		log.Error("to_scylla", map[string]interface{}{"error": uerr.Error()})
	}
	log.Error("finish_job", map[string]interface{}{"error": msg})
}

// cleanKeywords normalizes the model's keyword line: split on punctuation,
// keep entries that contain letters, join with commas.
func cleanKeywords(csv string) string {
	parts := strings.FieldsFunc(csv, func(r rune) bool {
		return unicode.IsPunct(r) || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || !strings.ContainsFunc(p, unicode.IsLetter) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

type summaryBody struct {
	GID       string `json:"gid" cbor:"gid"`
	CID       string `json:"cid" cbor:"cid"`
	Language  string `json:"language" cbor:"language"`
	Version   int16  `json:"version" cbor:"version"`
	Model     string `json:"model" cbor:"model"`
	Progress  int8   `json:"progress" cbor:"progress"`
	UpdatedAt int64  `json:"updated_at" cbor:"updated_at"`
	Tokens    int32  `json:"tokens" cbor:"tokens"`
	Summary   string `json:"summary" cbor:"summary"`
	Error     string `json:"error" cbor:"error"`
}

func (a *App) handleGetSummary(c *gin.Context) {
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
		"action": "get_summarizing",
		"gid":    gid.String(),
		"cid":    cid.String(),
	})

	row, err := a.Store.GetSummary(ctx, gid, cid, lang, req.Version, req.Fields)
	if stderrors.Is(err, database.ErrNotFound) {
		renderError(c, errors.New(404, "record not found"))
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}
	renderResult(c, &summaryBody{
		GID:       row.GID.String(),
		CID:       row.CID.String(),
		Language:  row.Language,
		Version:   row.Version,
		Model:     row.Model,
		Progress:  row.Progress,
		UpdatedAt: row.UpdatedAt,
		Tokens:    row.Tokens,
		Summary:   row.Summary,
		Error:     row.Error,
	})
}
