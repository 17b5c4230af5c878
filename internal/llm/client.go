// Package llm calls OpenAI-compatible chat and embedding APIs through a
// set of backends with failover and per-host circuit breaking.
package llm

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/glossahq/glossa/pkg/errors"
	"github.com/glossahq/glossa/pkg/observability"
	"github.com/glossahq/glossa/pkg/tokenizer"
)

// request bodies this large or larger are gzip-compressed
const compressMinLength = 256

const xForwardedHost = "X-Forwarded-Host"

// retryDelay is slept before retrying a rate-limited request against the
// same host.
var retryDelay = 3 * time.Second

// Client calls the configured backends. All methods are safe for
// concurrent use.
type Client struct {
	http     *http.Client
	openai   *backend
	azureais []*backend
	breakers map[string]*gobreaker.CircuitBreaker
	ua       string
	tokens   func(string) int
}

// New builds a Client from the configuration. version goes into the
// User-Agent header.
func New(cfg Config, version string) (*Client, error) {
	openai, azureais, err := buildBackends(cfg)
	if err != nil {
		return nil, err
	}

	tlsCfg, err := agentTLSConfig(cfg.Agent)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 25 * time.Second,
		}).DialContext,
		TLSClientConfig:     tlsCfg,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   180 * time.Second,
		},
		openai:   openai,
		azureais: azureais,
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(azureais)+1),
		ua:       "Mozilla/5.0 glossahq.com glossa/" + version,
		tokens:   tokenizer.Len,
	}
	c.breakers[openai.host] = newBreaker(openai.host)
	for _, b := range azureais {
		if _, ok := c.breakers[b.host]; !ok {
			c.breakers[b.host] = newBreaker(b.host)
		}
	}
	return c, nil
}

func newBreaker(host string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			code := errors.Code(err)
			return code != 429 && code < 500
		},
	})
}

// pick selects the backend for the given wire model name. Azure backends
// carrying the model are rotated by index, skipping open breakers when an
// alternative exists; without any the direct backend serves the call.
func (c *Client) pick(name string, index int) *backend {
	list := make([]*backend, 0, len(c.azureais))
	for _, b := range c.azureais {
		if b.urlFor(name) != "" {
			list = append(list, b)
		}
	}
	if len(list) == 0 {
		return c.openai
	}

	closed := make([]*backend, 0, len(list))
	for _, b := range list {
		if c.breakers[b.host].State() != gobreaker.StateOpen {
			closed = append(closed, b)
		}
	}
	if len(closed) > 0 {
		list = closed
	}
	if index < 0 {
		index = -index
	}
	return list[index%len(list)]
}

func retryable(err error) bool {
	code := errors.Code(err)
	return code == 429 || code > 500
}

// retryWait sleeps before retrying a 429 against the same host, honoring
// cancellation.
func (c *Client) retryWait(ctx context.Context, err error, from, to *backend) error {
	if from.host != to.host || errors.Code(err) != 429 {
		return nil
	}
	select {
	case <-ctx.Done():
		return errors.New(504, "%s", ctx.Err().Error())
	case <-time.After(retryDelay):
		return nil
	}
}

// request serializes in, posts it to url through the backend's breaker and
// decodes the response into out.
func (c *Client) request(ctx context.Context, b *backend, url string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.New(500, "%s", err.Error())
	}
	kv := observability.CtxKV(ctx)
	kv.SetKvs(map[string]interface{}{
		"url":         url,
		"body_length": len(data),
	})

	_, err = c.breakers[b.host].Execute(func() (interface{}, error) {
		return nil, c.do(ctx, b, url, data, out)
	})
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.New(503, "backend %q unavailable: %s", b.host, err.Error())
	}
	return err
}

func (c *Client) do(ctx context.Context, b *backend, url string, data []byte, out interface{}) error {
	kv := observability.CtxKV(ctx)

	body := data
	gzipped := false
	if len(data) >= compressMinLength {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return errors.New(500, "%s", err.Error())
		}
		if err := zw.Close(); err != nil {
			return errors.New(500, "%s", err.Error())
		}
		body = buf.Bytes()
		gzipped = true
		kv.Set("gzip_length", len(body))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.New(500, "%s", err.Error())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", c.ua)
	if gzipped {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if rid := observability.CtxRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}
	for k, vv := range b.headers {
		for _, v := range vv {
			req.Header.Set(k, v)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		kv.Set("req_body", string(data))
		if isTimeout(err) {
			return errors.New(504, "%s", err.Error())
		}
		return errors.New(500, "%s", err.Error())
	}
	defer res.Body.Close()

	reader := io.Reader(res.Body)
	if res.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(res.Body)
		if err != nil {
			return errors.New(500, "%s", err.Error())
		}
		defer zr.Close()
		reader = zr
	}
	resBody, err := io.ReadAll(reader)
	if err != nil {
		if isTimeout(err) {
			return errors.New(504, "%s", err.Error())
		}
		return errors.New(500, "%s", err.Error())
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if err := json.Unmarshal(resBody, out); err != nil {
			return errors.New(500, "%s", err.Error())
		}
		return nil
	}

	status := res.StatusCode
	text := string(resBody)
	if status == 400 {
		if strings.Contains(text, "context_length_exceeded") {
			status = 422
		} else if strings.Contains(text, "content_filter") {
			status = 451
		}
	}
	resHeaders := make(map[string]interface{}, len(res.Header))
	for k := range res.Header {
		resHeaders[k] = res.Header.Get(k)
	}
	kv.SetKvs(map[string]interface{}{
		"req_body":    string(data),
		"res_status":  status,
		"res_headers": resHeaders,
	})
	return errors.New(status, "%s", text)
}

func isTimeout(err error) bool {
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "timeout") || strings.Contains(s, "timed out")
}

func agentTLSConfig(cfg AgentConfig) (*tls.Config, error) {
	if cfg.ClientPemFile == "" && cfg.ClientRootCertFile == "" {
		return nil, nil
	}

	tc := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.ClientRootCertFile != "" {
		pem, err := os.ReadFile(cfg.ClientRootCertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read agent root cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse agent root cert %q", cfg.ClientRootCertFile)
		}
		tc.RootCAs = pool
	}
	if cfg.ClientPemFile != "" {
		pem, err := os.ReadFile(cfg.ClientPemFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read agent client pem: %w", err)
		}
		cert, err := tls.X509KeyPair(pem, pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse agent client pem %q: %w", cfg.ClientPemFile, err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

func randIndex() int {
	return rand.Intn(1 << 30)
}
