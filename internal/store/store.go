// Package store is the tabular model layer over Scylla: translation,
// summary and embedding artifacts plus per-group usage counters. Field
// selection is whitelist-checked, writes are upserts.
package store

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/gocql/gocql"
	"github.com/rs/xid"

	"github.com/glossahq/glossa/pkg/database"
	"github.com/glossahq/glossa/pkg/errors"
)

// Store runs the model queries on a shared Scylla session.
type Store struct {
	db *database.Scylla
}

// New wraps the given session.
func New(db *database.Scylla) *Store {
	return &Store{db: db}
}

// ID is an xid stored as a 12-byte blob.
type ID xid.ID

// ParseID parses the canonical 20-character xid form. The round-trip check
// rejects strings that merely decode.
func ParseID(s string) (ID, error) {
	id, err := xid.FromString(s)
	if err != nil || id.String() != s {
		return ID{}, errors.New(400, "invalid xid: %s", s)
	}
	return ID(id), nil
}

func (id ID) String() string {
	return xid.ID(id).String()
}

// MarshalCQL implements gocql.Marshaler.
func (id ID) MarshalCQL(info gocql.TypeInfo) ([]byte, error) {
	return xid.ID(id).Bytes(), nil
}

// UnmarshalCQL implements gocql.Unmarshaler. A null column yields the zero
// id.
func (id *ID) UnmarshalCQL(info gocql.TypeInfo, data []byte) error {
	if len(data) == 0 {
		*id = ID{}
		return nil
	}
	x, err := xid.FromBytes(data)
	if err != nil {
		return fmt.Errorf("invalid xid bytes: %w", err)
	}
	*id = ID(x)
	return nil
}

// selectFields validates sel against the model's column list. An empty sel
// selects every column; pk columns are appended when the caller needs them
// back.
func selectFields(all, sel, pk []string) ([]string, error) {
	if len(sel) == 0 {
		return all, nil
	}
	for _, f := range sel {
		if !slices.Contains(all, f) {
			return nil, errors.New(400, "Invalid field: %s", f)
		}
	}
	out := append(make([]string, 0, len(sel)+len(pk)), sel...)
	for _, f := range pk {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// setClause builds a sorted SET clause from cols, rejecting columns outside
// the whitelist.
func setClause(valid []string, cols map[string]interface{}) (string, []interface{}, error) {
	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := make([]string, 0, len(keys))
	params := make([]interface{}, 0, len(keys)+4)
	for _, k := range keys {
		if !slices.Contains(valid, k) {
			return "", nil, errors.New(400, "Invalid field: %s", k)
		}
		set = append(set, k+"=?")
		params = append(params, cols[k])
	}
	return strings.Join(set, ","), params, nil
}
