package database

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gocql/gocql"
)

// latencyBuckets is the number of exponential latency buckets. Bucket i
// covers latencies up to 1<<i milliseconds, the last bucket is unbounded.
const latencyBuckets = 20

// Metrics accumulates client-side query statistics for the session. It
// implements gocql.QueryObserver so every query attempt is recorded,
// including page fetches issued by iterators.
type Metrics struct {
	queries      atomic.Uint64
	errors       atomic.Uint64
	queriesIter  atomic.Uint64
	errorsIter   atomic.Uint64
	retries      atomic.Uint64
	latencySumUs atomic.Uint64
	buckets      [latencyBuckets]atomic.Uint64
}

// Snapshot is a point-in-time view of the session metrics, shaped for the
// healthz payload.
type Snapshot struct {
	LatencyAvgMs   uint64 `json:"latency_avg_ms" cbor:"latency_avg_ms"`
	LatencyP99Ms   uint64 `json:"latency_p99_ms" cbor:"latency_p99_ms"`
	LatencyP90Ms   uint64 `json:"latency_p90_ms" cbor:"latency_p90_ms"`
	ErrorsNum      uint64 `json:"errors_num" cbor:"errors_num"`
	QueriesNum     uint64 `json:"queries_num" cbor:"queries_num"`
	ErrorsIterNum  uint64 `json:"errors_iter_num" cbor:"errors_iter_num"`
	QueriesIterNum uint64 `json:"queries_iter_num" cbor:"queries_iter_num"`
	RetriesNum     uint64 `json:"retries_num" cbor:"retries_num"`
}

// ObserveQuery records one query attempt.
func (m *Metrics) ObserveQuery(_ context.Context, q gocql.ObservedQuery) {
	m.queries.Add(1)
	if q.Err != nil {
		m.errors.Add(1)
	}
	if q.Attempt > 0 {
		m.retries.Add(1)
	}
	d := q.End.Sub(q.Start)
	if d < 0 {
		d = 0
	}
	m.latencySumUs.Add(uint64(d.Microseconds()))
	m.buckets[bucketFor(d)].Add(1)
}

func (m *Metrics) observeIter(err error) {
	if err != nil {
		m.errorsIter.Add(1)
	}
}

// Snapshot returns the current counters and latency aggregates. Percentiles
// are upper bounds of the matching histogram bucket, in milliseconds.
func (m *Metrics) Snapshot() Snapshot {
	var counts [latencyBuckets]uint64
	var total uint64
	for i := range counts {
		counts[i] = m.buckets[i].Load()
		total += counts[i]
	}

	s := Snapshot{
		ErrorsNum:      m.errors.Load(),
		QueriesNum:     m.queries.Load(),
		ErrorsIterNum:  m.errorsIter.Load(),
		QueriesIterNum: m.queriesIter.Load(),
		RetriesNum:     m.retries.Load(),
	}
	if total == 0 {
		return s
	}

	s.LatencyAvgMs = m.latencySumUs.Load() / total / 1000
	s.LatencyP90Ms = percentile(counts[:], total, 90)
	s.LatencyP99Ms = percentile(counts[:], total, 99)
	return s
}

// bucketFor maps a latency to its histogram bucket.
func bucketFor(d time.Duration) int {
	ms := uint64(d.Milliseconds())
	i := 0
	for ub := uint64(1); i < latencyBuckets-1 && ms > ub; ub <<= 1 {
		i++
	}
	return i
}

// percentile returns the upper bound in milliseconds of the first bucket
// whose cumulative count reaches p percent of total.
func percentile(counts []uint64, total, p uint64) uint64 {
	rank := (total*p + 99) / 100
	var cum uint64
	for i, c := range counts {
		cum += c
		if cum >= rank {
			return uint64(1) << i
		}
	}
	return uint64(1) << (len(counts) - 1)
}
