package api

import (
	"github.com/gin-gonic/gin"

	"github.com/glossahq/glossa/pkg/database"
)

func (a *App) handleVersion(c *gin.Context) {
	renderResult(c, map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})
}

// handleHealthz reports the live job gauges and the Scylla session
// statistics.
func (a *App) handleHealthz(c *gin.Context) {
	var s database.Snapshot
	if a.Metrics != nil {
		s = a.Metrics.Snapshot()
	}
	renderResult(c, map[string]interface{}{
		"translating_tasks":       a.translatingJobs.Load(),
		"embedding_tasks":         a.embeddingJobs.Load(),
		"scylla_latency_avg_ms":   s.LatencyAvgMs,
		"scylla_latency_p99_ms":   s.LatencyP99Ms,
		"scylla_latency_p90_ms":   s.LatencyP90Ms,
		"scylla_errors_num":       s.ErrorsNum,
		"scylla_queries_num":      s.QueriesNum,
		"scylla_errors_iter_num":  s.ErrorsIterNum,
		"scylla_queries_iter_num": s.QueriesIterNum,
		"scylla_retries_num":      s.RetriesNum,
	})
}
