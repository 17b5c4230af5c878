// Package vectordb wraps the Qdrant client for the private and public
// point collections.
package vectordb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/keepalive"
)

// SearchLimit is the number of points returned by a similarity search.
const SearchLimit = 3

const (
	privateTimeout = 5 * time.Second
	publicTimeout  = 10 * time.Second
)

// Config holds the Qdrant connection settings.
type Config struct {
	URL    string `json:"url" mapstructure:"url"`
	APIKey string `json:"-" mapstructure:"api_key"`
}

// Qdrant serves a private collection and its public mirror `<name>_pub`.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	public     string
}

// New connects to Qdrant and verifies that both collections exist.
func New(ctx context.Context, cfg Config, collection string) (*Qdrant, error) {
	host, port, useTLS, err := parseEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithConnectParams(grpc.ConnectParams{
				Backoff:           backoff.DefaultConfig,
				MinConnectTimeout: 3 * time.Second,
			}),
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                30 * time.Second,
				Timeout:             3 * time.Second,
				PermitWithoutStream: true,
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client for %q: %w", cfg.URL, err)
	}

	q := &Qdrant{
		client:     client,
		collection: collection,
		public:     collection + "_pub",
	}
	for _, name := range []string{q.collection, q.public} {
		cctx, cancel := context.WithTimeout(ctx, privateTimeout)
		ok, err := client.CollectionExists(cctx, name)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to check collection %q: %w", name, err)
		}
		if !ok {
			return nil, fmt.Errorf("collection %q does not exist", name)
		}
	}
	return q, nil
}

// AddPoints upserts points into the private collection.
func (q *Qdrant) AddPoints(ctx context.Context, points []*qdrant.PointStruct) error {
	ctx, cancel := context.WithTimeout(ctx, privateTimeout)
	defer cancel()
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	return err
}

// CopyToPublic copies the points with the given uuid ids from the private
// collection into the public one, vectors and payload included.
func (q *Qdrant) CopyToPublic(ctx context.Context, ids []string) error {
	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewIDUUID(id))
	}

	gctx, cancel := context.WithTimeout(ctx, privateTimeout)
	res, err := q.client.Get(gctx, &qdrant.GetPoints{
		CollectionName: q.collection,
		Ids:            pointIDs,
		WithVectors:    qdrant.NewWithVectors(true),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	cancel()
	if err != nil {
		return fmt.Errorf("failed to get points: %w", err)
	}

	points := make([]*qdrant.PointStruct, 0, len(res))
	for _, p := range res {
		points = append(points, &qdrant.PointStruct{
			Id:      p.Id,
			Payload: p.Payload,
			Vectors: vectorsFromOutput(p.Vectors),
		})
	}

	uctx, cancel := context.WithTimeout(ctx, publicTimeout)
	defer cancel()
	_, err = q.client.Upsert(uctx, &qdrant.UpsertPoints{
		CollectionName: q.public,
		Points:         points,
	})
	return err
}

// SearchPoints searches the private collection.
func (q *Qdrant) SearchPoints(ctx context.Context, vector []float32, filter *qdrant.Filter) ([]*qdrant.ScoredPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, privateTimeout)
	defer cancel()
	return q.search(ctx, q.collection, vector, filter)
}

// SearchPublicPoints searches the public collection.
func (q *Qdrant) SearchPublicPoints(ctx context.Context, vector []float32, filter *qdrant.Filter) ([]*qdrant.ScoredPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, publicTimeout)
	defer cancel()
	return q.search(ctx, q.public, vector, filter)
}

func (q *Qdrant) search(ctx context.Context, collection string, vector []float32, filter *qdrant.Filter) ([]*qdrant.ScoredPoint, error) {
	return q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(SearchLimit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
}

// Close shuts the underlying gRPC connection down.
func (q *Qdrant) Close() error {
	return q.client.Close()
}

// MatchText builds a full-text match condition on a payload field.
func MatchText(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Text{Text: value},
				},
			},
		},
	}
}

func vectorsFromOutput(out *qdrant.VectorsOutput) *qdrant.Vectors {
	if out == nil {
		return nil
	}
	v := out.GetVector()
	if v == nil {
		return nil
	}
	return qdrant.NewVectors(v.GetData()...)
}

func parseEndpoint(rawURL string) (host string, port int, useTLS bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", 0, false, fmt.Errorf("invalid qdrant url %q: unsupported scheme %q", rawURL, u.Scheme)
	}

	host = u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("invalid qdrant url %q: missing host", rawURL)
	}
	port = 6334
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid qdrant url %q: %w", rawURL, err)
		}
	}
	return host, port, u.Scheme == "https", nil
}
