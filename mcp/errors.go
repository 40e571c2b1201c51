package mcp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for the MCP package.
var (
	// ErrNotConnected is returned when attempting to use a transport that
	// has no open push channel.
	ErrNotConnected = errors.New("mcp: not connected")

	// ErrSessionNotEstablished is returned when a catalog or invoke
	// operation is attempted before the server has announced a session.
	ErrSessionNotEstablished = errors.New("mcp: session not established")

	// ErrSessionWaitTimeout is returned when no session handshake arrives
	// within the configured wait budget.
	ErrSessionWaitTimeout = errors.New("mcp: timed out waiting for session")

	// ErrStaleGeneration is returned to a caller whose request was issued
	// against a session generation that has since been superseded.
	ErrStaleGeneration = errors.New("mcp: response belongs to a superseded session generation")
)

// RequestTimeoutError is returned when no matching response arrives within
// the request's budget. The pending entry is removed before this is
// returned; a late response for the same id is dropped.
type RequestTimeoutError struct {
	Method  string
	ID      string
	Timeout time.Duration
}

func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("mcp: %s request %s timed out after %s", e.Method, e.ID, e.Timeout)
}

// ToolNotFoundError is returned when a requested tool name is absent from
// the current catalog snapshot. Known enumerates the snapshot's tool names.
type ToolNotFoundError struct {
	Name  string
	Known []string
}

func (e *ToolNotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("mcp: tool %q not found (catalog is empty)", e.Name)
	}
	return fmt.Sprintf("mcp: tool %q not found (known tools: %s)", e.Name, strings.Join(e.Known, ", "))
}

// ToolExecutionError carries a remote error field back to the caller.
type ToolExecutionError struct {
	Method  string
	Code    int
	Message string
	Data    []byte
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("mcp: %s failed with code %d: %s", e.Method, e.Code, e.Message)
}
