package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/glossahq/glossa/pkg/errors"
)

// Summary is one row of the summarizing table, keyed like Translation. The
// summary column is plain text, not CBOR.
type Summary struct {
	GID       ID
	CID       ID
	Language  string
	Version   int16
	Model     string
	Progress  int8
	UpdatedAt int64
	Tokens    int32
	Summary   string
	Error     string
}

var summaryFields = []string{
	"gid", "cid", "language", "version",
	"model", "progress", "updated_at", "tokens", "summary", "error",
}

var summarySetFields = []string{
	"model", "progress", "updated_at", "tokens", "summary", "error",
}

func (m *Summary) scanDest(fields []string) ([]interface{}, error) {
	dest := make([]interface{}, len(fields))
	for i, f := range fields {
		switch f {
		case "gid":
			dest[i] = &m.GID
		case "cid":
			dest[i] = &m.CID
		case "language":
			dest[i] = &m.Language
		case "version":
			dest[i] = &m.Version
		case "model":
			dest[i] = &m.Model
		case "progress":
			dest[i] = &m.Progress
		case "updated_at":
			dest[i] = &m.UpdatedAt
		case "tokens":
			dest[i] = &m.Tokens
		case "summary":
			dest[i] = &m.Summary
		case "error":
			dest[i] = &m.Error
		default:
			return nil, errors.New(400, "Invalid field: %s", f)
		}
	}
	return dest, nil
}

// GetSummary loads one row, selecting only the given fields (all when
// empty). Returns database.ErrNotFound when the row does not exist.
func (s *Store) GetSummary(ctx context.Context, gid, cid ID, language string, version int16, fields []string) (*Summary, error) {
	fields, err := selectFields(summaryFields, fields, nil)
	if err != nil {
		return nil, err
	}
	m := &Summary{GID: gid, CID: cid, Language: language, Version: version}
	dest, err := m.scanDest(fields)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(
		"SELECT %s FROM summarizing WHERE gid=? AND cid=? AND language=? AND version=? LIMIT 1",
		strings.Join(fields, ","))
	if err := s.db.ScanOne(ctx, stmt,
		[]interface{}{gid, cid, language, version}, dest); err != nil {
		return nil, err
	}
	return m, nil
}

// UpsertSummary writes the full row, overwriting any previous values.
func (s *Store) UpsertSummary(ctx context.Context, m *Summary) error {
	stmt := fmt.Sprintf("INSERT INTO summarizing (%s) VALUES (?,?,?,?,?,?,?,?,?,?)",
		strings.Join(summaryFields, ","))
	return s.db.Exec(ctx, stmt,
		m.GID, m.CID, m.Language, m.Version,
		m.Model, m.Progress, m.UpdatedAt, m.Tokens, m.Summary, m.Error)
}

// UpdateSummary sets the given non-key columns on one row.
func (s *Store) UpdateSummary(ctx context.Context, gid, cid ID, language string, version int16, cols map[string]interface{}) error {
	set, params, err := setClause(summarySetFields, cols)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("UPDATE summarizing SET %s WHERE gid=? AND cid=? AND language=? AND version=?", set)
	params = append(params, gid, cid, language, version)
	return s.db.Exec(ctx, stmt, params...)
}
