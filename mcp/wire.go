package mcp

import "encoding/json"

// ProtocolVersion is the fixed protocol version stamped on every outbound
// request and expected on inbound messages.
const ProtocolVersion = "2.0"

// Methods understood by the tool server.
const (
	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"
)

// Request is the envelope POSTed to the server's side channel.
type Request struct {
	ProtocolVersion string        `json:"protocolVersion"`
	Method          string        `json:"method"`
	Params          RequestParams `json:"params"`
	ID              string        `json:"id"`
}

// RequestParams carries the session binding and, for tools/call, the target
// tool and its arguments.
type RequestParams struct {
	SessionID string         `json:"sessionId,omitempty"`
	Name      string         `json:"name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Response is a correlated reply delivered over the push channel.
// Exactly one of Result and Error is set.
type Response struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ID              string          `json:"id"`
	Result          json.RawMessage `json:"result,omitempty"`
	Error           *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the server-side failure attached to a Response.
type ResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ToolDescriptor describes one invocable tool as reported by the server.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the structural JSON-schema-like argument contract of a tool.
// It is informational for selection; the client performs no argument
// validation against it.
type InputSchema struct {
	Type       string              `json:"type,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property is a single schema property.
type Property struct {
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Enum        []any     `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// listToolsResult is the payload of a tools/list response.
type listToolsResult struct {
	Tools []ToolDescriptor `json:"tools"`
}

// inboundMessage is the union of everything the push channel may deliver:
// a correlated Response (ID set) or a notification (Method/Params set).
// Unknown shapes fail the triage in Client.dispatch and are dropped.
type inboundMessage struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ID              string          `json:"id,omitempty"`
	Result          json.RawMessage `json:"result,omitempty"`
	Error           *ResponseError  `json:"error,omitempty"`
	Method          string          `json:"method,omitempty"`
	Params          *RequestParams  `json:"params,omitempty"`
}
