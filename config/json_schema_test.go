package config

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	schemaJSON, err := JSONSchema()
	require.NoError(t, err)

	unmarshalledSchema := &jsonschema.Schema{}
	require.NoError(t, unmarshalledSchema.UnmarshalJSON(schemaJSON))
	assert.Equal(t, "millie configuration", unmarshalledSchema.Title)

	s := string(schemaJSON)
	assert.Contains(t, s, `"trigger_keywords"`)
	assert.Contains(t, s, `"price_assets"`)
	assert.NotContains(t, s, "openai_api_key")
}
