package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shahidain/langchain-ai-agent/internal/schema"
	"github.com/shahidain/langchain-ai-agent/mcp"
)

// Selection is the tagged outcome of the select stage: either a tool was
// chosen, or the model's reply is plain text that becomes the candidate
// final answer.
type Selection struct {
	// Tool is the selected tool name; empty means no tool applies.
	Tool string

	// Args are the model-proposed tool arguments.
	Args map[string]any

	// Text is the model's reply when no tool was chosen.
	Text string
}

// ToolChosen reports whether the selection names a tool.
func (s Selection) ToolChosen() bool { return s.Tool != "" }

// toolChoice is the reply contract the select stage asks the model to honor.
// Its generated schema is embedded in the select prompt.
type toolChoice struct {
	Tool string         `json:"tool" jsonschema:"description=Name of the selected tool"`
	Args map[string]any `json:"args,omitempty" jsonschema:"description=Arguments for the selected tool"`
}

// toolChoiceSchema is rendered once; the struct never changes at runtime.
var toolChoiceSchema = func() string {
	raw, err := schema.GenerateJSON[toolChoice]()
	if err != nil {
		return `{"type":"object","properties":{"tool":{"type":"string"},"args":{"type":"object"}}}`
	}
	return string(raw)
}()

// buildSelectPrompt produces the compact system prompt for the select stage:
// one line per tool, then the reply contract.
func buildSelectPrompt(tools []mcp.ToolDescriptor, hint string) string {
	var b strings.Builder
	if hint != "" {
		b.WriteString(hint)
		b.WriteString("\n\n")
	}
	b.WriteString("You can call the following tools:\n")
	for _, tool := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", tool.Name, tool.Description)
	}
	b.WriteString("\nIf one of these tools answers the user's request, reply with ONLY a JSON object matching this schema:\n")
	b.WriteString(toolChoiceSchema)
	b.WriteString("\nIf no tool applies, answer the user directly in plain text.")
	return b.String()
}

// classifyReply decides between SelectedTool and PlainText with one
// structural check: a reply is a tool choice iff it is a JSON object whose
// "tool" field is a non-empty string. Everything else is plain text —
// including JSON that fails the check.
func classifyReply(reply string) Selection {
	trimmed := strings.TrimSpace(stripFences(reply))
	if !strings.HasPrefix(trimmed, "{") {
		return Selection{Text: reply}
	}

	var choice toolChoice
	if err := json.Unmarshal([]byte(trimmed), &choice); err != nil || choice.Tool == "" {
		return Selection{Text: reply}
	}
	return Selection{Tool: choice.Tool, Args: choice.Args}
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag. Models wrap JSON replies this way often enough to matter.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// coerceArgs normalizes string-typed argument values against the tool's
// declared schema, uniformly for every tool.
func coerceArgs(inputSchema mcp.InputSchema, args map[string]any) map[string]any {
	return schema.CoerceArgs(inputSchema, args)
}
