package observability

import (
	"context"
	"sync"
)

type ctxKeyKV struct{}

type ctxKeyRequestID struct{}

// KV accumulates key/value pairs across a request or job so they can be
// emitted in one final log entry.
type KV struct {
	mu     sync.Mutex
	fields map[string]interface{}
}

// NewKV returns an empty collector.
func NewKV() *KV {
	return &KV{fields: make(map[string]interface{})}
}

// Set records one key/value pair. A nil collector ignores the call.
func (kv *KV) Set(key string, value interface{}) {
	if kv == nil {
		return
	}
	kv.mu.Lock()
	kv.fields[key] = value
	kv.mu.Unlock()
}

// SetKvs records every pair in fields. A nil collector ignores the call.
func (kv *KV) SetKvs(fields map[string]interface{}) {
	if kv == nil {
		return
	}
	kv.mu.Lock()
	for k, v := range fields {
		kv.fields[k] = v
	}
	kv.mu.Unlock()
}

// Fields returns a copy of the collected pairs.
func (kv *KV) Fields() map[string]interface{} {
	if kv == nil {
		return map[string]interface{}{}
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	out := make(map[string]interface{}, len(kv.fields))
	for k, v := range kv.fields {
		out[k] = v
	}
	return out
}

// WithKV returns a context carrying a fresh collector.
func WithKV(ctx context.Context) (context.Context, *KV) {
	kv := NewKV()
	return context.WithValue(ctx, ctxKeyKV{}, kv), kv
}

// CtxKV returns the collector bound to ctx, or nil when none is attached.
// The nil collector is safe to use.
func CtxKV(ctx context.Context) *KV {
	kv, _ := ctx.Value(ctxKeyKV{}).(*KV)
	return kv
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, rid)
}

// CtxRequestID returns the request id bound to ctx, or "".
func CtxRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return rid
}
