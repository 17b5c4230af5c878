package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/glossahq/glossa/pkg/errors"
)

// Translation is one row of the translating table, keyed by
// (gid, cid, language, version).
type Translation struct {
	GID       ID
	CID       ID
	Language  string
	Version   int16
	Model     string
	Progress  int8
	UpdatedAt int64
	Tokens    int32
	Content   []byte
	Error     string
}

var translationFields = []string{
	"gid", "cid", "language", "version",
	"model", "progress", "updated_at", "tokens", "content", "error",
}

var translationSetFields = []string{
	"model", "progress", "updated_at", "tokens", "content", "error",
}

func (t *Translation) scanDest(fields []string) ([]interface{}, error) {
	dest := make([]interface{}, len(fields))
	for i, f := range fields {
		switch f {
		case "gid":
			dest[i] = &t.GID
		case "cid":
			dest[i] = &t.CID
		case "language":
			dest[i] = &t.Language
		case "version":
			dest[i] = &t.Version
		case "model":
			dest[i] = &t.Model
		case "progress":
			dest[i] = &t.Progress
		case "updated_at":
			dest[i] = &t.UpdatedAt
		case "tokens":
			dest[i] = &t.Tokens
		case "content":
			dest[i] = &t.Content
		case "error":
			dest[i] = &t.Error
		default:
			return nil, errors.New(400, "Invalid field: %s", f)
		}
	}
	return dest, nil
}

// GetTranslation loads one row, selecting only the given fields (all when
// empty). Returns database.ErrNotFound when the row does not exist.
func (s *Store) GetTranslation(ctx context.Context, gid, cid ID, language string, version int16, fields []string) (*Translation, error) {
	fields, err := selectFields(translationFields, fields, nil)
	if err != nil {
		return nil, err
	}
	t := &Translation{GID: gid, CID: cid, Language: language, Version: version}
	dest, err := t.scanDest(fields)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(
		"SELECT %s FROM translating WHERE gid=? AND cid=? AND language=? AND version=? LIMIT 1",
		strings.Join(fields, ","))
	if err := s.db.ScanOne(ctx, stmt,
		[]interface{}{gid, cid, language, version}, dest); err != nil {
		return nil, err
	}
	return t, nil
}

// UpsertTranslation writes the full row, overwriting any previous values.
func (s *Store) UpsertTranslation(ctx context.Context, t *Translation) error {
	stmt := fmt.Sprintf("INSERT INTO translating (%s) VALUES (?,?,?,?,?,?,?,?,?,?)",
		strings.Join(translationFields, ","))
	return s.db.Exec(ctx, stmt,
		t.GID, t.CID, t.Language, t.Version,
		t.Model, t.Progress, t.UpdatedAt, t.Tokens, t.Content, t.Error)
}

// UpdateTranslation sets the given non-key columns on one row.
func (s *Store) UpdateTranslation(ctx context.Context, gid, cid ID, language string, version int16, cols map[string]interface{}) error {
	set, params, err := setClause(translationSetFields, cols)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("UPDATE translating SET %s WHERE gid=? AND cid=? AND language=? AND version=?", set)
	params = append(params, gid, cid, language, version)
	return s.db.Exec(ctx, stmt, params...)
}
