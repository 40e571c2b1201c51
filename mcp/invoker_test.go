package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoker(t *testing.T, tools []ToolDescriptor) (*Invoker, *fakeSender, *sessionManager) {
	t.Helper()
	sender := &fakeSender{}
	session := newSessionManager()
	session.advance()
	session.establish("sess-1")

	opts := resolveClientOptions(nil)
	correlator := newCorrelator(sender, session, opts.log)
	responder := &listResponder{correlator: correlator, tools: tools}

	sender.onSend = func(req *Request) {
		switch req.Method {
		case MethodToolsList:
			responder.respond(req)
		case MethodToolsCall:
			payload, _ := json.Marshal("[...5 items...]")
			go correlator.resolve(&inboundMessage{ID: req.ID, Result: payload})
		}
	}

	catalog := newCatalog(correlator, session, &opts)
	return newInvoker(correlator, catalog, session, &opts), sender, session
}

func TestInvoker_CallTool(t *testing.T) {
	invoker, sender, _ := newTestInvoker(t, productTools)

	result, err := invoker.CallTool(context.Background(), "getProducts", map[string]any{"skip": 2, "limit": 5})
	require.NoError(t, err)
	assert.JSONEq(t, `"[...5 items...]"`, string(result))

	call := sender.lastSent()
	require.Equal(t, MethodToolsCall, call.Method)
	assert.Equal(t, "sess-1", call.Params.SessionID)
	assert.Equal(t, "getProducts", call.Params.Name)
}

func TestInvoker_SessionPrecondition(t *testing.T) {
	invoker, sender, session := newTestInvoker(t, productTools)
	session.invalidate()

	_, err := invoker.CallTool(context.Background(), "getProducts", nil)
	assert.ErrorIs(t, err, ErrSessionNotEstablished)
	assert.Zero(t, sender.sentCount(), "precondition failure must not touch the transport")
}

func TestInvoker_NotFoundListsKnownNames(t *testing.T) {
	invoker, sender, _ := newTestInvoker(t, productTools)

	// Prime the catalog, then count sends so the not-found path can be
	// shown to stay off the wire.
	_, err := invoker.catalog.Fetch(context.Background(), true)
	require.NoError(t, err)
	before := sender.sentCount()

	_, err = invoker.CallTool(context.Background(), "deleteEverything", nil)
	require.Error(t, err)

	var notFound *ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "deleteEverything", notFound.Name)
	assert.Equal(t, []string{"getProducts", "getOrders"}, notFound.Known)
	assert.Contains(t, notFound.Error(), "getProducts")
	assert.Equal(t, before, sender.sentCount(), "no tools/call may be sent for an unknown tool")
}
