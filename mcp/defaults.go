package mcp

import "time"

// Default budgets and paths. All are tunable via ClientOption functions.
const (
	// DefaultListTimeout is the response budget for tools/list requests.
	DefaultListTimeout = 30 * time.Second

	// DefaultCallTimeout is the response budget for tools/call requests.
	// Tool work is assumed slower than catalog listing.
	DefaultCallTimeout = 60 * time.Second

	// DefaultCatalogTTL is how long a catalog snapshot stays valid.
	DefaultCatalogTTL = 5 * time.Minute

	// DefaultSessionWait caps how long a fetch waits for the session
	// handshake before failing with ErrSessionWaitTimeout.
	DefaultSessionWait = 10 * time.Second

	// DefaultEventsPath is the push-channel path on the server.
	DefaultEventsPath = "/sse"

	// DefaultMessagesPath is the side-channel path requests are POSTed to.
	DefaultMessagesPath = "/messages"
)
