package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/gocql/gocql"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/xid"
	"golang.org/x/crypto/sha3"

	"github.com/glossahq/glossa/pkg/errors"
)

// Embedding is one embedded unit, keyed by a uuid derived from
// (cid, language, ids) so re-embedding the same unit overwrites its row and
// its Qdrant point.
type Embedding struct {
	UUID     gocql.UUID
	CID      ID
	Language string
	Version  int16
	IDs      string
	GID      ID
	Content  []byte
}

var embeddingFields = []string{
	"uuid", "cid", "language", "version", "ids", "gid", "content",
}

// NewEmbedding derives the unit uuid from the first 16 bytes of
// SHA3-256(cid bytes, 639-3 code, comma-joined section ids).
func NewEmbedding(cid ID, language, ids string) *Embedding {
	h := sha3.New256()
	h.Write(xid.ID(cid).Bytes())
	h.Write([]byte(language))
	h.Write([]byte(ids))
	sum := h.Sum(nil)

	u, _ := gocql.UUIDFromBytes(sum[:16])
	return &Embedding{UUID: u, CID: cid, Language: language, IDs: ids}
}

func (e *Embedding) scanDest(fields []string) ([]interface{}, error) {
	dest := make([]interface{}, len(fields))
	for i, f := range fields {
		switch f {
		case "uuid":
			dest[i] = &e.UUID
		case "cid":
			dest[i] = &e.CID
		case "language":
			dest[i] = &e.Language
		case "version":
			dest[i] = &e.Version
		case "ids":
			dest[i] = &e.IDs
		case "gid":
			dest[i] = &e.GID
		case "content":
			dest[i] = &e.Content
		default:
			return nil, errors.New(400, "Invalid field: %s", f)
		}
	}
	return dest, nil
}

// Point builds the Qdrant point for this unit with the given vector.
func (e *Embedding) Point(vector []float32) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(e.UUID.String()),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"cid":  e.CID.String(),
			"gid":  e.GID.String(),
			"lang": e.Language,
		}),
	}
}

// GetEmbedding loads one row by uuid, selecting only the given fields (all
// when empty). Returns database.ErrNotFound when the row does not exist.
func (s *Store) GetEmbedding(ctx context.Context, id gocql.UUID, fields []string) (*Embedding, error) {
	fields, err := selectFields(embeddingFields, fields, nil)
	if err != nil {
		return nil, err
	}
	e := &Embedding{UUID: id}
	dest, err := e.scanDest(fields)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("SELECT %s FROM embedding WHERE uuid=? LIMIT 1",
		strings.Join(fields, ","))
	if err := s.db.ScanOne(ctx, stmt, []interface{}{id}, dest); err != nil {
		return nil, err
	}
	return e, nil
}

// UpsertEmbedding writes the full row, overwriting any previous values.
func (s *Store) UpsertEmbedding(ctx context.Context, e *Embedding) error {
	stmt := fmt.Sprintf("INSERT INTO embedding (%s) VALUES (?,?,?,?,?,?,?)",
		strings.Join(embeddingFields, ","))
	return s.db.Exec(ctx, stmt,
		e.UUID, e.CID, e.Language, e.Version, e.IDs, e.GID, e.Content)
}

// ListEmbeddingsByCID lists the unit rows of one creation version. The
// filtering read bypasses the cache and is capped server-side at 10s.
func (s *Store) ListEmbeddingsByCID(ctx context.Context, cid, gid ID, language string, version int16, fields []string) ([]Embedding, error) {
	fields, err := selectFields(embeddingFields, fields, []string{"uuid"})
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(
		"SELECT %s FROM embedding WHERE cid=? AND language=? AND version=? AND gid=? LIMIT 1000 ALLOW FILTERING BYPASS CACHE USING TIMEOUT 10s",
		strings.Join(fields, ","))
	iter := s.db.Iter(ctx, stmt, 1000, cid, language, version, gid)

	var out []Embedding
	for {
		e := Embedding{}
		dest, err := e.scanDest(fields)
		if err != nil {
			_ = s.db.CloseIter(iter)
			return nil, err
		}
		if !iter.Scan(dest...) {
			break
		}
		out = append(out, e)
	}
	if err := s.db.CloseIter(iter); err != nil {
		return nil, err
	}
	return out, nil
}
