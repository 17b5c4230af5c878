// Package database provides the Scylla session shared by the tabular
// models, with client-side query metrics surfaced on healthz.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// ErrNotFound is returned when a single-row query matches nothing.
var ErrNotFound = errors.New("record not found")

// Config holds the Scylla connection settings.
type Config struct {
	Nodes    []string `json:"nodes" mapstructure:"nodes"`
	Username string   `json:"username" mapstructure:"username"`
	Password string   `json:"-" mapstructure:"password"`
	Keyspace string   `json:"keyspace" mapstructure:"keyspace"`
}

// Scylla wraps a gocql session.
type Scylla struct {
	session *gocql.Session
	metrics *Metrics
}

// New connects to the cluster and selects the configured keyspace.
func New(cfg Config) (*Scylla, error) {
	cluster := gocql.NewCluster(cfg.Nodes...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.Timeout = 5 * time.Second
	cluster.Compressor = gocql.SnappyCompressor{}
	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 2}
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	metrics := &Metrics{}
	cluster.QueryObserver = metrics

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to scylla %v: %w", cfg.Nodes, err)
	}
	return &Scylla{session: session, metrics: metrics}, nil
}

// Metrics returns the session metrics collector.
func (s *Scylla) Metrics() *Metrics {
	return s.metrics
}

// Exec runs a statement that returns no rows.
func (s *Scylla) Exec(ctx context.Context, stmt string, values ...interface{}) error {
	q := s.session.Query(stmt, values...).WithContext(ctx)
	defer q.Release()
	return q.Exec()
}

// ScanOne runs a single-row query and scans the row into dest. It returns
// ErrNotFound when no row matches.
func (s *Scylla) ScanOne(ctx context.Context, stmt string, values []interface{}, dest []interface{}) error {
	q := s.session.Query(stmt, values...).WithContext(ctx)
	defer q.Release()
	iter := q.Iter()
	if !iter.Scan(dest...) {
		if err := iter.Close(); err != nil {
			return err
		}
		return ErrNotFound
	}
	return iter.Close()
}

// Iter starts a paged query. Callers must finish it with CloseIter so
// iterator failures show up in the metrics.
func (s *Scylla) Iter(ctx context.Context, stmt string, pageSize int, values ...interface{}) *gocql.Iter {
	s.metrics.queriesIter.Add(1)
	return s.session.Query(stmt, values...).WithContext(ctx).PageSize(pageSize).Iter()
}

// CloseIter closes iter and records any failure.
func (s *Scylla) CloseIter(iter *gocql.Iter) error {
	err := iter.Close()
	s.metrics.observeIter(err)
	return err
}

// Close shuts the session down.
func (s *Scylla) Close() {
	s.session.Close()
}
