package schema

import (
	"strconv"
	"strings"

	"github.com/shahidain/langchain-ai-agent/mcp"
)

// Coerce converts a raw string to the Go value matching a JSON-schema
// property type. Values that do not parse are returned unchanged; the
// remote tool reports its own argument errors.
func Coerce(propType, raw string) any {
	switch propType {
	case "number":
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
	case "integer":
		if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return i
		}
	case "boolean":
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return b
		}
	}
	return raw
}

// CoerceArgs applies Coerce to every string-valued argument whose schema
// property declares a non-string type. Non-string values and arguments
// absent from the schema pass through untouched.
func CoerceArgs(s mcp.InputSchema, args map[string]any) map[string]any {
	if len(args) == 0 || len(s.Properties) == 0 {
		return args
	}
	out := make(map[string]any, len(args))
	for key, value := range args {
		out[key] = value
		raw, isString := value.(string)
		if !isString {
			continue
		}
		prop, ok := s.Properties[key]
		if !ok || prop.Type == "" || prop.Type == "string" {
			continue
		}
		out[key] = Coerce(prop.Type, raw)
	}
	return out
}
