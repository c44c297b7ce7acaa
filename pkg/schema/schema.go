// Package schema generates JSON schemas for configuration types.
//
// Schemas are reflected from Go types with
// [github.com/invopop/jsonschema]: field names come from json tags, and
// titles, enums and defaults from jsonschema tags. Types may refine their
// own schema by implementing JSONSchema or JSONSchemaExtend.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generator reflects a JSON schema from a Go value.
type Generator struct {
	reflector *jsonschema.Reflector
	v         any
	id        string
}

// Option configures a [Generator].
type Option func(*Generator)

// WithID sets the schema's $id.
func WithID(id string) Option {
	return func(g *Generator) {
		g.id = id
	}
}

// WithAdditionalProperties allows properties not declared by the Go types.
func WithAdditionalProperties() Option {
	return func(g *Generator) {
		g.reflector.AllowAdditionalProperties = true
	}
}

// NewGenerator creates a [Generator] for the type of v.
func NewGenerator(v any, opts ...Option) *Generator {
	g := &Generator{
		v: v,
		reflector: &jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
		},
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Schema returns the reflected schema.
func (g *Generator) Schema() *jsonschema.Schema {
	jss := g.reflector.Reflect(g.v)
	if g.id != "" {
		jss.ID = jsonschema.ID(g.id)
	}

	return jss
}

// Generate returns the reflected schema as indented JSON.
func (g *Generator) Generate() ([]byte, error) {
	data, err := json.MarshalIndent(g.Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}

// MustGenerate is like [Generator.Generate] but panics on error.
func (g *Generator) MustGenerate() []byte {
	data, err := g.Generate()
	if err != nil {
		panic(err)
	}

	return data
}
