package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shahidain/langchain-ai-agent/mcp"
)

func TestClassifyReply_ToolChoice(t *testing.T) {
	sel := classifyReply(`{"tool":"getProducts","args":{"skip":2,"limit":5}}`)
	assert.True(t, sel.ToolChosen())
	assert.Equal(t, "getProducts", sel.Tool)
	assert.Equal(t, map[string]any{"skip": float64(2), "limit": float64(5)}, sel.Args)
}

func TestClassifyReply_ToolChoiceWithoutArgs(t *testing.T) {
	sel := classifyReply(`{"tool":"getOrders"}`)
	assert.True(t, sel.ToolChosen())
	assert.Nil(t, sel.Args)
}

func TestClassifyReply_FencedToolChoice(t *testing.T) {
	for _, reply := range []string{
		"```json\n{\"tool\":\"getProducts\",\"args\":{}}\n```",
		"```\n{\"tool\":\"getProducts\"}\n```",
		"  {\"tool\":\"getProducts\"}  ",
	} {
		sel := classifyReply(reply)
		assert.True(t, sel.ToolChosen(), "reply %q", reply)
		assert.Equal(t, "getProducts", sel.Tool)
	}
}

func TestClassifyReply_PlainText(t *testing.T) {
	for _, reply := range []string{
		"The capital of France is Paris.",
		"I would use getProducts for that.",
		"",
	} {
		sel := classifyReply(reply)
		assert.False(t, sel.ToolChosen(), "reply %q", reply)
		assert.Equal(t, reply, sel.Text)
	}
}

func TestClassifyReply_JSONWithoutToolIsPlainText(t *testing.T) {
	// JSON that fails the structural check is an answer, not an error.
	for _, reply := range []string{
		`{"answer":"Paris"}`,
		`{"tool":""}`,
		`{"tool":42}`,
		`{"tool":`,
		`[1,2,3]`,
	} {
		sel := classifyReply(reply)
		assert.False(t, sel.ToolChosen(), "reply %q", reply)
		assert.Equal(t, reply, sel.Text)
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, "no fences here", stripFences("no fences here"))
}

func TestBuildSelectPrompt(t *testing.T) {
	tools := []mcp.ToolDescriptor{
		{Name: "getProducts", Description: "Fetch a page of products"},
		{Name: "getOrders", Description: "Fetch recent orders"},
	}

	prompt := buildSelectPrompt(tools, "")
	assert.Contains(t, prompt, "- getProducts: Fetch a page of products")
	assert.Contains(t, prompt, "- getOrders: Fetch recent orders")
	assert.Contains(t, prompt, `"tool"`)

	withHint := buildSelectPrompt(tools, "Prefer read-only tools.")
	assert.Contains(t, withHint, "Prefer read-only tools.")
}

func TestCoerceArgs(t *testing.T) {
	inputSchema := mcp.InputSchema{
		Type: "object",
		Properties: map[string]mcp.Property{
			"skip":  {Type: "number"},
			"limit": {Type: "integer"},
			"tag":   {Type: "string"},
			"all":   {Type: "boolean"},
		},
	}

	got := coerceArgs(inputSchema, map[string]any{
		"skip":  "2",
		"limit": "5",
		"tag":   "books",
		"all":   "true",
		"extra": "left alone",
	})

	assert.Equal(t, float64(2), got["skip"])
	assert.Equal(t, int64(5), got["limit"])
	assert.Equal(t, "books", got["tag"])
	assert.Equal(t, true, got["all"])
	assert.Equal(t, "left alone", got["extra"])
}
