package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/schema"
)

type testPanel struct {
	Text    string `json:"text" jsonschema:"title=Text"`
	Enabled bool   `json:"enabled"`
}

type testConfig struct {
	Panels map[string]*testPanel `json:"panels,omitempty" jsonschema:"title=Panels"`
	Name   string                `json:"name" jsonschema:"required"`
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts           []schema.Option
		wantID         string
		wantAdditional bool
	}{
		"defaults": {},
		"with id": {
			opts:   []schema.Option{schema.WithID("https://example.com/config.json")},
			wantID: "https://example.com/config.json",
		},
		"additional properties": {
			opts:           []schema.Option{schema.WithAdditionalProperties()},
			wantAdditional: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			data, err := schema.NewGenerator(&testConfig{}, tc.opts...).Generate()
			require.NoError(t, err)
			assert.Equal(t, byte('\n'), data[len(data)-1])

			var got map[string]any

			require.NoError(t, json.Unmarshal(data, &got))

			if tc.wantID != "" {
				assert.Equal(t, tc.wantID, got["$id"])
			}

			props, ok := got["properties"].(map[string]any)
			require.True(t, ok, "expanded struct has top-level properties")
			assert.Contains(t, props, "panels")
			assert.Contains(t, props, "name")
			assert.Equal(t, []any{"name"}, got["required"])

			if tc.wantAdditional {
				assert.NotContains(t, got, "additionalProperties")
			} else {
				assert.Equal(t, false, got["additionalProperties"])
			}
		})
	}
}

func TestGenerator_MustGenerate(t *testing.T) {
	t.Parallel()

	g := schema.NewGenerator(&testConfig{})

	assert.NotPanics(t, func() {
		assert.NotEmpty(t, g.MustGenerate())
	})
	assert.Equal(t, "Panels", schemaTitle(t, g, "panels"))
}

func schemaTitle(t *testing.T, g *schema.Generator, prop string) string {
	t.Helper()

	p, ok := g.Schema().Properties.Get(prop)
	require.True(t, ok)

	return p.Title
}
