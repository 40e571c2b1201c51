package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listResponder simulates a server that answers every tools/list with the
// given descriptors and counts how many remote calls it served.
type listResponder struct {
	correlator *Correlator
	tools      []ToolDescriptor
	calls      atomic.Int64
}

func (r *listResponder) respond(req *Request) {
	if req.Method != MethodToolsList {
		return
	}
	r.calls.Add(1)
	payload, _ := json.Marshal(listToolsResult{Tools: r.tools})
	go r.correlator.resolve(&inboundMessage{ID: req.ID, Result: payload})
}

func newTestCatalog(t *testing.T, tools []ToolDescriptor, mutate func(*clientOptions)) (*Catalog, *listResponder, *sessionManager) {
	t.Helper()
	sender := &fakeSender{}
	session := newSessionManager()
	session.advance()
	session.establish("sess-1")

	opts := resolveClientOptions(nil)
	if mutate != nil {
		mutate(&opts)
	}

	correlator := newCorrelator(sender, session, opts.log)
	responder := &listResponder{correlator: correlator, tools: tools}
	sender.onSend = responder.respond

	return newCatalog(correlator, session, &opts), responder, session
}

var productTools = []ToolDescriptor{
	{
		Name:        "getProducts",
		Description: "list products",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"skip":  {Type: "number"},
				"limit": {Type: "number"},
			},
		},
	},
	{Name: "getOrders", Description: "list orders"},
}

func TestCatalog_RoundTrip(t *testing.T) {
	catalog, _, _ := newTestCatalog(t, productTools, nil)

	snap, err := catalog.Fetch(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, productTools, snap.Tools)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestCatalog_TTLCaching(t *testing.T) {
	catalog, responder, _ := newTestCatalog(t, productTools, nil)

	// Two fetches inside the TTL issue exactly one remote call.
	_, err := catalog.Fetch(context.Background(), false)
	require.NoError(t, err)
	_, err = catalog.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, responder.calls.Load())

	// Simulate TTL expiry by backdating the snapshot.
	catalog.mu.Lock()
	expired := *catalog.snap
	expired.FetchedAt = time.Now().Add(-catalog.ttl - time.Second)
	catalog.snap = &expired
	catalog.mu.Unlock()

	_, err = catalog.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, responder.calls.Load())
}

func TestCatalog_ForceRefreshBypassesCache(t *testing.T) {
	catalog, responder, _ := newTestCatalog(t, productTools, nil)

	_, err := catalog.Fetch(context.Background(), false)
	require.NoError(t, err)
	_, err = catalog.Fetch(context.Background(), true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, responder.calls.Load())
}

func TestCatalog_InvalidateThenFetch_OneRemoteCall(t *testing.T) {
	catalog, responder, _ := newTestCatalog(t, productTools, nil)

	for range 3 {
		catalog.Invalidate()
		_, err := catalog.Fetch(context.Background(), false)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, responder.calls.Load())
}

func TestCatalog_ConcurrentFetches_OneRemoteCall(t *testing.T) {
	sender := &fakeSender{}
	session := newSessionManager()
	session.advance()
	session.establish("sess-1")

	opts := resolveClientOptions(nil)
	correlator := newCorrelator(sender, session, opts.log)
	responder := &listResponder{correlator: correlator, tools: productTools}
	// Keep the remote call in flight long enough for every waiter to queue
	// up behind it.
	sender.onSend = func(req *Request) {
		time.Sleep(50 * time.Millisecond)
		responder.respond(req)
	}
	catalog := newCatalog(correlator, session, &opts)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			snap, err := catalog.Fetch(context.Background(), false)
			assert.NoError(t, err)
			assert.Len(t, snap.Tools, 2)
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, responder.calls.Load())
}

func TestCatalog_LookupWithoutRefresh(t *testing.T) {
	catalog, responder, _ := newTestCatalog(t, productTools, nil)

	_, ok := catalog.Lookup("getProducts")
	assert.False(t, ok, "lookup must not trigger a fetch")
	assert.Zero(t, responder.calls.Load())

	_, err := catalog.Fetch(context.Background(), false)
	require.NoError(t, err)

	tool, ok := catalog.Lookup("getProducts")
	require.True(t, ok)
	assert.Equal(t, "list products", tool.Description)

	inputSchema, ok := catalog.Schema("getProducts")
	require.True(t, ok)
	assert.Equal(t, "number", inputSchema.Properties["skip"].Type)

	_, ok = catalog.Lookup("nope")
	assert.False(t, ok)
	assert.EqualValues(t, 1, responder.calls.Load())
}

func TestCatalog_SessionWaitTimeout(t *testing.T) {
	catalog, _, session := newTestCatalog(t, productTools, func(o *clientOptions) {
		o.sessionWait = 50 * time.Millisecond
	})
	session.invalidate()

	_, err := catalog.Fetch(context.Background(), true)
	assert.ErrorIs(t, err, ErrSessionWaitTimeout)
}

func TestCatalog_ToolFilter(t *testing.T) {
	catalog, _, _ := newTestCatalog(t, productTools, func(o *clientOptions) {
		o.toolFilter = []string{"getProducts"}
	})

	snap, err := catalog.Fetch(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, snap.Tools, 1)
	assert.Equal(t, "getProducts", snap.Tools[0].Name)
}

func TestCatalog_ToolFilterGlob(t *testing.T) {
	catalog, _, _ := newTestCatalog(t, productTools, func(o *clientOptions) {
		o.toolFilter = []string{"get*"}
	})

	snap, err := catalog.Fetch(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, snap.Tools, 2)
}

func TestCatalog_SnapshotReplacedWholesale(t *testing.T) {
	catalog, responder, _ := newTestCatalog(t, productTools, nil)

	first, err := catalog.Fetch(context.Background(), true)
	require.NoError(t, err)

	responder.tools = productTools[:1]
	second, err := catalog.Fetch(context.Background(), true)
	require.NoError(t, err)

	assert.Len(t, first.Tools, 2, "old snapshot must not be mutated")
	assert.Len(t, second.Tools, 1)
}
