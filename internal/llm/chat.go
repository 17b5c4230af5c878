package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/jsonrepair"
	"github.com/glossahq/glossa/pkg/observability"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	TopP        float32       `json:"top_p,omitempty"`
	User        string        `json:"user,omitempty"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   apiUsage     `json:"usage"`
}

// checkChatResponse validates the choice list and maps finish reasons to
// error codes.
func checkChatResponse(res *chatResponse) error {
	if len(res.Choices) != 1 {
		return errors.New(500, "Unexpected choices: %d", len(res.Choices))
	}

	choice := res.Choices[0]
	reason := choice.FinishReason
	if reason == "" {
		reason = "stop"
	}
	switch reason {
	case "stop":
		return nil
	case "content_filter":
		return errors.New(452, "Content was triggered the filtering model").WithData(choice.Message.Content)
	case "length":
		return errors.New(422, "Incomplete output due to max_tokens parameter").WithData(choice.Message.Content)
	default:
		return errors.New(500, "Unknown finish reason: %s", reason).WithData(choice.Message.Content)
	}
}

// chat posts the request, retrying once against the next backend on a 429
// or gateway failure.
func (c *Client) chat(ctx context.Context, body *chatRequest) (*chatResponse, error) {
	kv := observability.CtxKV(ctx)
	index := randIndex()
	b := c.pick(body.Model, index)
	kv.Set("host", b.host)

	res := &chatResponse{}
	err := c.request(ctx, b, b.urlFor(body.Model), body, res)
	if err == nil {
		err = checkChatResponse(res)
	}
	if err != nil && retryable(err) {
		kv.Set("retry_because", err.Error())
		rb := c.pick(body.Model, index+1)
		kv.Set("retry_host", rb.host)
		if werr := c.retryWait(ctx, err, b, rb); werr != nil {
			return nil, werr
		}
		res = &chatResponse{}
		if err = c.request(ctx, rb, rb.urlFor(body.Model), body, res); err == nil {
			err = checkChatResponse(res)
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TranslateOptions parameterizes one translation call. OriginLang and
// TargetLang are human-readable language names.
type TranslateOptions struct {
	Model      Model
	User       string
	Context    string
	OriginLang string
	TargetLang string
}

// Translate translates a two-dimensional text array, preserving the array
// structure. Returns the tokens spent and the translated array.
func (c *Client) Translate(ctx context.Context, opts TranslateOptions, input [][]string) (int, [][]string, error) {
	text, err := json.Marshal(input)
	if err != nil {
		return 0, nil, errors.New(500, "%s", err.Error())
	}

	prompt := translatePrompt(opts.Context, opts.OriginLang, opts.TargetLang)
	body := &chatRequest{
		Model: opts.Model.OpenAIName(),
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: string(text)},
		},
		MaxTokens:   opts.Model.MaxTokens(),
		Temperature: 0.1,
		TopP:        0.618,
		User:        opts.User,
	}

	kv := observability.CtxKV(ctx)
	kv.SetKvs(map[string]interface{}{
		"origin_lang":   opts.OriginLang,
		"target_lang":   opts.TargetLang,
		"system_tokens": c.tokens(prompt),
		"max_tokens":    body.MaxTokens,
		"model":         body.Model,
	})

	start := time.Now()
	res, err := c.chat(ctx, body)
	if err != nil {
		return 0, nil, err
	}
	logUsage(kv, res.Usage, start)

	rate := float64(1)
	if res.Usage.PromptTokens > 1000 {
		rate = float64(res.Usage.CompletionTokens) / float64(res.Usage.PromptTokens-90)
	}
	kv.Set("real_tokens_rate", rate)

	oc := res.Choices[0].Message.Content
	var content [][]string
	perr := json.Unmarshal([]byte(oc), &content)
	if perr != nil {
		fixed, ferr := jsonrepair.Fix(oc)
		if ferr != nil {
			kv.SetKvs(map[string]interface{}{
				"json_fixed":     false,
				"json_fix_error": ferr.Error(),
			})
		} else {
			perr = json.Unmarshal([]byte(fixed), &content)
			kv.Set("json_fixed", perr == nil)
			if perr == nil && !sameShape(input, content) {
				kv.SetKvs(map[string]interface{}{
					"json_input":  string(text),
					"json_output": oc,
				})
			}
		}
	}
	if perr != nil {
		kv.SetKvs(map[string]interface{}{
			"json_input":  string(text),
			"json_output": oc,
			"json_error":  perr.Error(),
		})
		return 0, nil, errors.New(500, "%s", perr.Error())
	}

	// a cardinality mismatch is recorded but tolerated, the reassembler
	// deals with it
	if len(content) != len(input) {
		kv.SetKvs(map[string]interface{}{
			"json_input":  string(text),
			"json_output": oc,
			"json_error": fmt.Sprintf("translated content array length not match, expected %d, got %d",
				len(input), len(content)),
		})
	}
	return res.Usage.TotalTokens, content, nil
}

// Summarize produces an entity-dense summary of text in the given
// language.
func (c *Client) Summarize(ctx context.Context, user, language, text string) (int, string, error) {
	prompt := summarizePrompt(language)
	body := &chatRequest{
		Model: ModelGPT3_5.OpenAIName(),
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: text},
		},
		MaxTokens:   800,
		Temperature: 0.382,
		TopP:        0.618,
		User:        user,
	}

	kv := observability.CtxKV(ctx)
	kv.SetKvs(map[string]interface{}{
		"system_tokens": c.tokens(prompt),
		"max_tokens":    body.MaxTokens,
		"model":         body.Model,
	})

	start := time.Now()
	res, err := c.chat(ctx, body)
	if err != nil {
		return 0, "", err
	}
	logUsage(kv, res.Usage, start)
	return res.Usage.TotalTokens, res.Choices[0].Message.Content, nil
}

// Keywords asks for up to five comma-separated keywords of text in the
// given language.
func (c *Client) Keywords(ctx context.Context, user, language, text string) (int, string, error) {
	body := &chatRequest{
		Model: ModelGPT3_5.OpenAIName(),
		Messages: []chatMessage{
			{Role: "system", Content: keywordsPrompt(language)},
			{Role: "user", Content: text},
		},
		MaxTokens:   256,
		Temperature: 0.1,
		TopP:        0.618,
		User:        user,
	}

	kv := observability.CtxKV(ctx)
	kv.SetKvs(map[string]interface{}{
		"max_tokens": body.MaxTokens,
		"model":      body.Model,
	})

	start := time.Now()
	res, err := c.chat(ctx, body)
	if err != nil {
		return 0, "", err
	}
	logUsage(kv, res.Usage, start)
	return res.Usage.TotalTokens, res.Choices[0].Message.Content, nil
}

func logUsage(kv *observability.KV, u apiUsage, start time.Time) {
	elapsed := time.Since(start).Milliseconds()
	fields := map[string]interface{}{
		"elapsed":           elapsed,
		"prompt_tokens":     u.PromptTokens,
		"completion_tokens": u.CompletionTokens,
		"total_tokens":      u.TotalTokens,
	}
	if elapsed > 0 {
		fields["speed"] = int64(u.TotalTokens) * 1000 / elapsed
	}
	kv.SetKvs(fields)
}

func sameShape(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}
