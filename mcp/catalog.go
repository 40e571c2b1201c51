package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// Snapshot is one immutable view of the remote tool list. Refreshing the
// catalog replaces the snapshot wholesale; a snapshot is never mutated in
// place.
type Snapshot struct {
	Tools     []ToolDescriptor
	FetchedAt time.Time
}

// Catalog caches the discovered tool list with a time-to-live and exposes
// lookup by name. All remote traffic goes through the Correlator.
type Catalog struct {
	correlator  *Correlator
	session     *sessionManager
	ttl         time.Duration
	listTimeout time.Duration
	sessionWait time.Duration
	filter      []string // doublestar patterns; empty = keep everything
	log         zerolog.Logger

	fetchMu sync.Mutex // serializes remote fetches

	mu   sync.Mutex
	snap *Snapshot
}

func newCatalog(correlator *Correlator, session *sessionManager, opts *clientOptions) *Catalog {
	return &Catalog{
		correlator:  correlator,
		session:     session,
		ttl:         opts.catalogTTL,
		listTimeout: opts.listTimeout,
		sessionWait: opts.sessionWait,
		filter:      opts.toolFilter,
		log:         opts.log,
	}
}

// Fetch returns the cached snapshot while it is inside its TTL, unless
// forceRefresh is set. Going remote waits for the session handshake (capped
// at the session wait budget), issues tools/list, and swaps in the new
// snapshot. Remote fetches are serialized: concurrent callers that arrive
// while one is in flight reuse its result instead of stampeding the server.
func (c *Catalog) Fetch(ctx context.Context, forceRefresh bool) (*Snapshot, error) {
	if !forceRefresh {
		if snap := c.fresh(); snap != nil {
			return snap, nil
		}
	}

	entered := time.Now()
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	// A fetch that completed while this caller waited its turn already
	// refreshed the snapshot; one remote call serves everyone who was
	// queued behind it.
	c.mu.Lock()
	if c.snap != nil && c.snap.FetchedAt.After(entered) {
		snap := c.snap
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	sess, err := c.session.waitReady(ctx, c.sessionWait)
	if err != nil {
		return nil, err
	}

	raw, err := c.correlator.Call(ctx, MethodToolsList, RequestParams{SessionID: sess.ID}, c.listTimeout)
	if err != nil {
		return nil, err
	}

	var result listToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp: decode tools/list result: %w", err)
	}

	snap := &Snapshot{
		Tools:     c.filterTools(result.Tools),
		FetchedAt: time.Now(),
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.log.Info().Int("tools", len(snap.Tools)).Msg("catalog refreshed")
	return snap, nil
}

// fresh returns the cached snapshot while it is inside its TTL, or nil.
func (c *Catalog) fresh() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap != nil && time.Since(c.snap.FetchedAt) < c.ttl {
		return c.snap
	}
	return nil
}

// filterTools applies the allowlist patterns, when configured.
func (c *Catalog) filterTools(tools []ToolDescriptor) []ToolDescriptor {
	if len(c.filter) == 0 {
		return tools
	}
	kept := make([]ToolDescriptor, 0, len(tools))
	for _, tool := range tools {
		for _, pattern := range c.filter {
			if ok, _ := doublestar.Match(pattern, tool.Name); ok {
				kept = append(kept, tool)
				break
			}
		}
	}
	return kept
}

// Lookup finds a tool by name in the current snapshot without refreshing.
func (c *Catalog) Lookup(name string) (ToolDescriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return ToolDescriptor{}, false
	}
	for _, tool := range c.snap.Tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return ToolDescriptor{}, false
}

// Schema returns a tool's input schema from the current snapshot.
func (c *Catalog) Schema(name string) (InputSchema, bool) {
	tool, ok := c.Lookup(name)
	return tool.InputSchema, ok
}

// Names returns the tool names in the current snapshot, in catalog order.
func (c *Catalog) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil
	}
	names := make([]string, len(c.snap.Tools))
	for i, tool := range c.snap.Tools {
		names[i] = tool.Name
	}
	return names
}

// Current returns the cached snapshot regardless of TTL, or nil.
func (c *Catalog) Current() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Invalidate clears the snapshot so the next Fetch goes remote.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}
