package mcp

import (
	"context"
	"encoding/json"
)

// Client is the explicit context object binding transport, session,
// correlator, catalog, and invoker together. Construct one per tool server;
// lifecycle (NewClient, Connect, Disconnect) is owned by the caller — there
// is no package-level state.
type Client struct {
	transport  *SSETransport
	session    *sessionManager
	correlator *Correlator
	catalog    *Catalog
	invoker    *Invoker
	opts       clientOptions
}

// NewClient creates a client for the tool server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	resolved := resolveClientOptions(opts)

	c := &Client{
		session: newSessionManager(),
		opts:    resolved,
	}
	c.transport = NewSSETransport(baseURL, resolved.httpClient, resolved.log)
	c.correlator = newCorrelator(c.transport, c.session, resolved.log)
	c.catalog = newCatalog(c.correlator, c.session, &resolved)
	c.invoker = newInvoker(c.correlator, c.catalog, c.session, &resolved)

	c.transport.OnMessage(c.dispatch)
	c.transport.OnDisconnect(func(err error) {
		// Outstanding requests are not rejected here; their responses, if
		// any, are caught by the generation check when they arrive.
		c.session.invalidate()
	})
	return c
}

// Connect opens the push channel and starts a new session generation. The
// session itself is seeded asynchronously by the server's handshake
// notification; callers that need it can rely on the session wait inside
// Tools/CallTool.
func (c *Client) Connect(ctx context.Context) error {
	c.session.advance()
	return c.transport.Connect(ctx)
}

// Disconnect closes the push channel and clears the session synchronously.
func (c *Client) Disconnect() {
	c.transport.Disconnect()
	c.session.invalidate()
}

// Connected reports whether the push channel is open.
func (c *Client) Connected() bool { return c.transport.Connected() }

// Session returns the live session, if one is established.
func (c *Client) Session() (Session, bool) { return c.session.current() }

// Tools returns the tool catalog, refreshing it when forced or expired.
func (c *Client) Tools(ctx context.Context, forceRefresh bool) ([]ToolDescriptor, error) {
	snap, err := c.catalog.Fetch(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return snap.Tools, nil
}

// Schema returns a tool's input schema from the current catalog snapshot.
func (c *Client) Schema(name string) (InputSchema, bool) { return c.catalog.Schema(name) }

// Lookup finds a tool in the current catalog snapshot without refreshing.
func (c *Client) Lookup(name string) (ToolDescriptor, bool) { return c.catalog.Lookup(name) }

// InvalidateCatalog clears the cached snapshot.
func (c *Client) InvalidateCatalog() { c.catalog.Invalidate() }

// CallTool invokes a remote tool and returns its raw result payload.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	return c.invoker.CallTool(ctx, name, args)
}

// dispatch triages every inbound push-channel payload, in arrival order:
// session handshake notifications seed the session manager, correlated
// responses go to the correlator, everything else is logged and dropped.
// Malformed payloads never close the connection.
func (c *Client) dispatch(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.opts.log.Warn().Err(err).Int("bytes", len(data)).Msg("dropping malformed push message")
		return
	}

	// Session handshake: an unsolicited tools/call-shaped notification whose
	// params carry the session id. Only the first one per generation seeds.
	if msg.ID == "" && msg.Params != nil && msg.Params.SessionID != "" {
		if c.session.establish(msg.Params.SessionID) {
			c.opts.log.Info().Str("session", msg.Params.SessionID).Msg("session established")
			c.afterHandshake()
		}
		return
	}

	if msg.ID != "" {
		if c.correlator.resolve(&msg) {
			return
		}
		c.opts.log.Debug().Str("id", msg.ID).Msg("dropping response for unknown request id")
		return
	}

	c.opts.log.Warn().Str("method", msg.Method).Msg("dropping unrecognized push message")
}

// afterHandshake triggers the automatic catalog fetch that follows a fresh
// session. It runs off the dispatch goroutine so catalog traffic cannot
// block inbound triage.
func (c *Client) afterHandshake() {
	if c.opts.noAutoFetch {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.listTimeout+c.opts.sessionWait)
		defer cancel()
		if _, err := c.catalog.Fetch(ctx, true); err != nil {
			c.opts.log.Warn().Err(err).Msg("automatic catalog fetch failed")
		}
	}()
}
