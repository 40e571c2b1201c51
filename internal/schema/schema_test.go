package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageQuery struct {
	Skip  float64  `json:"skip" jsonschema:"description=Items to skip"`
	Limit int      `json:"limit" jsonschema:"description=Items to return"`
	Tags  []string `json:"tags,omitempty" jsonschema:"description=Filter tags"`
	Sort  string   `json:"sort,omitempty" jsonschema:"enum=asc,enum=desc"`
}

func TestGenerate(t *testing.T) {
	s := Generate[pageQuery]()

	assert.Equal(t, "object", s.Type)
	require.NotNil(t, s.Properties)

	skip, ok := s.Properties["skip"]
	require.True(t, ok)
	assert.Equal(t, "number", skip.Type)
	assert.Equal(t, "Items to skip", skip.Description)

	limit, ok := s.Properties["limit"]
	require.True(t, ok)
	assert.Equal(t, "integer", limit.Type)

	tags, ok := s.Properties["tags"]
	require.True(t, ok)
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)

	sort, ok := s.Properties["sort"]
	require.True(t, ok)
	assert.Len(t, sort.Enum, 2)

	// Fields without omitempty are required.
	assert.Contains(t, s.Required, "skip")
	assert.Contains(t, s.Required, "limit")
	assert.NotContains(t, s.Required, "tags")
}

func TestGenerateJSON(t *testing.T) {
	raw, err := GenerateJSON[pageQuery]()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "object", decoded["type"])
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, float64(2.5), Coerce("number", "2.5"))
	assert.Equal(t, int64(7), Coerce("integer", " 7 "))
	assert.Equal(t, true, Coerce("boolean", "true"))
	assert.Equal(t, false, Coerce("boolean", "0"))

	// Unparseable values pass through for the remote tool to reject.
	assert.Equal(t, "abc", Coerce("number", "abc"))
	assert.Equal(t, "2.5", Coerce("integer", "2.5"))
	assert.Equal(t, "yes please", Coerce("boolean", "yes please"))
	assert.Equal(t, "anything", Coerce("string", "anything"))
	assert.Equal(t, "anything", Coerce("", "anything"))
}
