package vectordb

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	host, port, useTLS, err := parseEndpoint("http://127.0.0.1:6334")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 6334, port)
	assert.False(t, useTLS)

	host, port, useTLS, err = parseEndpoint("https://qdrant.internal")
	require.NoError(t, err)
	assert.Equal(t, "qdrant.internal", host)
	assert.Equal(t, 6334, port)
	assert.True(t, useTLS)

	_, _, _, err = parseEndpoint("qdrant:6334")
	assert.Error(t, err)

	_, _, _, err = parseEndpoint("http://")
	assert.Error(t, err)
}

func TestMatchText(t *testing.T) {
	cond := MatchText("lang", "zho")
	field := cond.GetField()
	require.NotNil(t, field)
	assert.Equal(t, "lang", field.Key)
	assert.Equal(t, "zho", field.Match.GetText())
}

func TestVectorsFromOutput(t *testing.T) {
	assert.Nil(t, vectorsFromOutput(nil))

	out := &qdrant.VectorsOutput{
		VectorsOptions: &qdrant.VectorsOutput_Vector{
			Vector: &qdrant.VectorOutput{Data: []float32{0.1, 0.2, 0.3}},
		},
	}
	v := vectorsFromOutput(out)
	require.NotNil(t, v)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, v.GetVector().GetData())
}
