// Package schema derives tool-protocol input schemas from Go struct types
// and coerces raw string values to their schema-declared types.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/shahidain/langchain-ai-agent/mcp"
)

// Generate produces an mcp.InputSchema from a Go struct type T.
// It uses struct tags (json, jsonschema) to derive the JSON Schema.
func Generate[T any]() mcp.InputSchema {
	var zero T
	s := jsonschema.Reflect(&zero)
	root := extractRoot(s)

	return mcp.InputSchema{
		Type:       "object",
		Properties: schemaProperties(root),
		Required:   root.Required,
	}
}

// GenerateJSON is a convenience that returns the schema as raw JSON bytes.
func GenerateJSON[T any]() (json.RawMessage, error) {
	return json.Marshal(Generate[T]())
}

// extractRoot resolves the root schema, following $ref to $defs if needed.
func extractRoot(s *jsonschema.Schema) *jsonschema.Schema {
	if s.Ref != "" && s.Definitions != nil {
		// invopop/jsonschema puts the actual type under $defs with a ref
		// like "#/$defs/TypeName".
		for _, def := range s.Definitions {
			if def.Type == "object" {
				return def
			}
		}
	}
	return s
}

// schemaProperties converts invopop's ordered property map into the wire
// property map.
func schemaProperties(s *jsonschema.Schema) map[string]mcp.Property {
	if s.Properties == nil {
		return nil
	}
	props := make(map[string]mcp.Property)
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		props[pair.Key] = property(pair.Value)
	}
	return props
}

// property converts a single invopop schema node.
func property(s *jsonschema.Schema) mcp.Property {
	p := mcp.Property{
		Type:        s.Type,
		Description: s.Description,
	}
	if len(s.Enum) > 0 {
		p.Enum = s.Enum
	}

	// invopop/jsonschema models nullable pointer types as anyOf with null.
	if p.Type == "" && len(s.AnyOf) > 0 {
		for _, sub := range s.AnyOf {
			if sub.Type != "null" && sub.Type != "" {
				p.Type = sub.Type
				break
			}
		}
	}

	if s.Items != nil {
		items := property(s.Items)
		p.Items = &items
	}
	return p
}
