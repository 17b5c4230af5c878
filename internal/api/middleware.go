package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"

	"github.com/glossahq/glossa/pkg/observability"
)

const (
	headerRequestID = "X-Request-Id"
	headerUser      = "X-User"
)

// requestContext tags every request with an id, attaches the log
// collector and writes the access log entry when the handler returns.
// Handlers annotate the entry through observability.CtxKV.
func (a *App) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = xid.New().String()
		}
		ctx := observability.WithRequestID(c.Request.Context(), rid)
		ctx, kv := observability.WithKV(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header(headerRequestID, rid)

		start := time.Now()
		c.Next()

		fields := kv.Fields()
		fields["method"] = c.Request.Method
		fields["uri"] = c.Request.URL.Path
		fields["xid"] = rid
		fields["status"] = c.Writer.Status()
		fields["elapsed"] = time.Since(start).Milliseconds()
		if user := c.GetHeader(headerUser); user != "" {
			fields["user"] = user
		}
		if c.Writer.Status() >= 500 {
			a.Logger.Error("access", fields)
		} else {
			a.Logger.Info("access", fields)
		}
	}
}

// ctxUser returns the caller identity forwarded by the gateway, used as
// the OpenAI user field.
func ctxUser(c *gin.Context) string {
	return c.GetHeader(headerUser)
}
