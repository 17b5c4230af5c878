package store

import (
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossahq/glossa/pkg/errors"
)

func TestParseID(t *testing.T) {
	s := xid.New().String()
	id, err := ParseID(s)
	require.NoError(t, err)
	assert.Equal(t, s, id.String())

	// a string that decodes but does not round-trip is rejected
	tail := byte('1')
	if s[19] == '1' {
		tail = '2'
	}
	if s[19] == 'g' {
		tail = 'h'
	}
	_, err = ParseID(s[:19] + string(tail))
	require.Error(t, err)
	assert.Equal(t, 400, errors.Code(err))
	assert.Contains(t, err.Error(), "invalid xid")

	for _, input := range []string{"", "not-an-xid", "AAAAAAAAAAAAAAAAAAAA"} {
		_, err := ParseID(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestIDMarshalCQL(t *testing.T) {
	orig := xid.New()
	id := ID(orig)

	data, err := id.MarshalCQL(nil)
	require.NoError(t, err)
	assert.Equal(t, orig.Bytes(), data)

	var back ID
	require.NoError(t, back.UnmarshalCQL(nil, data))
	assert.Equal(t, id, back)

	// null columns scan to the zero id
	require.NoError(t, back.UnmarshalCQL(nil, nil))
	assert.Equal(t, ID{}, back)

	assert.Error(t, back.UnmarshalCQL(nil, []byte{1, 2, 3}))
}

func TestSelectFields(t *testing.T) {
	all, err := selectFields(translationFields, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, translationFields, all)

	got, err := selectFields(translationFields, []string{"content", "tokens"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"content", "tokens"}, got)

	sel := []string{"ids"}
	got, err = selectFields(embeddingFields, sel, []string{"uuid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ids", "uuid"}, got)
	assert.Equal(t, []string{"ids"}, sel)

	got, err = selectFields(embeddingFields, []string{"uuid", "ids"}, []string{"uuid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"uuid", "ids"}, got)

	_, err = selectFields(translationFields, []string{"bogus"}, nil)
	require.Error(t, err)
	assert.Equal(t, 400, errors.Code(err))
	assert.Contains(t, err.Error(), "Invalid field: bogus")
}

func TestSetClause(t *testing.T) {
	set, params, err := setClause(translationSetFields, map[string]interface{}{
		"updated_at": int64(123),
		"error":      "boom",
		"progress":   int8(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "error=?,progress=?,updated_at=?", set)
	assert.Equal(t, []interface{}{"boom", int8(50), int64(123)}, params)

	// summary is not a translating column
	_, _, err = setClause(translationSetFields, map[string]interface{}{"summary": "x"})
	require.Error(t, err)
	assert.Equal(t, 400, errors.Code(err))
	assert.Contains(t, err.Error(), "Invalid field: summary")
}

func TestTranslationScanDest(t *testing.T) {
	tr := &Translation{}
	dest, err := tr.scanDest([]string{"content", "tokens", "error"})
	require.NoError(t, err)
	require.Len(t, dest, 3)
	assert.Same(t, &tr.Content, dest[0])
	assert.Same(t, &tr.Tokens, dest[1])
	assert.Same(t, &tr.Error, dest[2])

	_, err = tr.scanDest([]string{"summary"})
	assert.Error(t, err)
}

func TestSummaryScanDest(t *testing.T) {
	m := &Summary{}
	dest, err := m.scanDest([]string{"summary", "progress"})
	require.NoError(t, err)
	require.Len(t, dest, 2)
	assert.Same(t, &m.Summary, dest[0])
	assert.Same(t, &m.Progress, dest[1])

	_, err = m.scanDest([]string{"content"})
	assert.Error(t, err)
}
