package jsonrepair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixValidJSON(t *testing.T) {
	cases := []struct {
		input  string
		output string
	}{
		{`""`, `""`},
		{`" "`, `" "`},
		{`" \""`, `" \""`},
		{`{}`, `{}`},
		{"{ } \n", `{}`},
		{`[]`, `[]`},
		{"[ ] \n", `[]`},
		{`{"a" : {"b":["c"]}}`, `{"a":{"b":["c"]}}`},
		{
			`[
				{
				  "id": "------",
				  "texts": []
				},
				{
				  "id": "Esp9G6",
				  "texts": [
					"Stream:"
				  ]
				},
				{
				  "id": "------",
				  "texts": []
				},
				{
				  "id": "ykuRdu",
				  "texts": [
					"Internet Engineering Task Force (IETF)"
				  ]
				}
			]`,
			`[{"id":"------","texts":[]},{"id":"Esp9G6","texts":["Stream:"]},{"id":"------","texts":[]},{"id":"ykuRdu","texts":["Internet Engineering Task Force (IETF)"]}]`,
		},
	}

	for _, c := range cases {
		got, err := Fix(c.input)
		require.NoError(t, err, "input %q", c.input)
		assert.Equal(t, c.output, got, "input %q", c.input)
		assert.True(t, json.Valid([]byte(got)), "result should be valid JSON: %q", got)
	}
}

func TestFixInvalidJSON(t *testing.T) {
	cases := []struct {
		input  string
		output string
	}{
		// an extra quote is dropped
		{`"""`, `""`},
		{`"" "`, `""`},
		// a lone backslash becomes an escaped backslash
		{`"\ "`, `"\\ "`},
		// stray quotes inside a string are dropped, brackets kept
		{
			`[
				{
				  "id": "Esp9G6",
				  "texts": [
					""] Stream: ["
				  ]
				}
			]`,
			`[{"id":"Esp9G6","texts":["] Stream: ["]}]`,
		},
		// quotes before a comma-and-value end the string; spacing compacts
		{
			`[{"id":"a","texts":["one", "two", "three"]}, {"id":"b","texts":[]}]`,
			`[{"id":"a","texts":["one","two","three"]},{"id":"b","texts":[]}]`,
		},
		// a string after `",` missing its opening quote is reopened
		{`[["1:","hello",world"]]`, `[["1:","hello","world"]]`},
		// output truncated before the closing brackets is closed out
		{`["a"`, `["a"]`},
		{`["a",`, `["a"]`},
		{`[["1:","你好"], ["2:","世界"`, `[["1:","你好"],["2:","世界"]]`},
	}

	for _, c := range cases {
		got, err := Fix(c.input)
		require.NoError(t, err, "input %q", c.input)
		assert.Equal(t, c.output, got, "input %q", c.input)
		assert.True(t, json.Valid([]byte(got)), "result should be valid JSON: %q", got)
	}
}

func TestFixErrors(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", "no token to scan"},
		{"  \n ", "no token to scan"},
		{"123", "unknown token"},
		{"[1, 2]", "unsupport token"},
		{`{"a":1}`, "unsupport token"},
		{`[] extra`, "extraneous data exist"},
		{`["abc`, "no token to finish text"},
		{`{"a":"b"`, "no token to scan in object"},
	}

	for _, c := range cases {
		_, err := Fix(c.input)
		require.Error(t, err, "input %q", c.input)
		assert.Contains(t, err.Error(), c.want, "input %q", c.input)
	}
}
