package api

import (
	"github.com/gin-gonic/gin"

	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/language"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/segmenter"
)

type languageEntry struct {
	Code    string `json:"code" cbor:"code"`
	Name    string `json:"name" cbor:"name"`
	Autonym string `json:"autonym" cbor:"autonym"`
}

func (a *App) handleListLanguages(c *gin.Context) {
	list := language.List()
	out := make([]languageEntry, 0, len(list))
	for _, e := range list {
		out = append(out, languageEntry{Code: e[1], Name: e[2], Autonym: e[3]})
	}
	renderResult(c, out)
}

type detectLanguageRequest struct {
	Content []byte `json:"content" cbor:"content"`
	Text    string `json:"text" cbor:"text"`
}

func (a *App) handleDetectLanguage(c *gin.Context) {
	req := &detectLanguageRequest{}
	if err := bind(c, req); err != nil {
		renderError(c, err)
		return
	}

	text := req.Text
	if len(req.Content) > 0 {
		content, err := decodeContent(req.Content)
		if err != nil {
			renderError(c, err)
			return
		}
		text = segmenter.DetectString(content)
	}
	if text == "" {
		renderError(c, errors.New(400, "Invalid content: empty"))
		return
	}

	lang := a.Detect.Detect(text)
	observability.CtxKV(c.Request.Context()).SetKvs(map[string]interface{}{
		"action":   "detect_language",
		"language": lang,
	})
	renderResult(c, map[string]interface{}{
		"lang": lang,
		"name": language.Name(lang),
	})
}
