package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Invoker validates a requested tool against the catalog and performs the
// call through the Correlator. Arguments are not validated against the
// tool's schema; schema is informational for the selection stage.
type Invoker struct {
	correlator  *Correlator
	catalog     *Catalog
	session     *sessionManager
	callTimeout time.Duration
	log         zerolog.Logger
}

func newInvoker(correlator *Correlator, catalog *Catalog, session *sessionManager, opts *clientOptions) *Invoker {
	return &Invoker{
		correlator:  correlator,
		catalog:     catalog,
		session:     session,
		callTimeout: opts.callTimeout,
		log:         opts.log,
	}
}

// CallTool invokes a remote tool by name and returns the raw result payload.
// It fails fast with ErrSessionNotEstablished when no session is live, and
// with a *ToolNotFoundError (listing known names, without contacting the
// transport) when the name is absent from the catalog.
func (inv *Invoker) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	sess, ok := inv.session.current()
	if !ok {
		return nil, ErrSessionNotEstablished
	}

	snap, err := inv.catalog.Fetch(ctx, false)
	if err != nil {
		return nil, err
	}

	found := false
	known := make([]string, len(snap.Tools))
	for i, tool := range snap.Tools {
		known[i] = tool.Name
		if tool.Name == name {
			found = true
		}
	}
	if !found {
		return nil, &ToolNotFoundError{Name: name, Known: known}
	}

	inv.log.Debug().Str("tool", name).Msg("invoking tool")
	return inv.correlator.Call(ctx, MethodToolsCall, RequestParams{
		SessionID: sess.ID,
		Name:      name,
		Arguments: args,
	}, inv.callTimeout)
}
