package mcp

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ClientOption configures a Client via the functional options pattern.
type ClientOption func(*clientOptions)

// clientOptions holds all configurable fields set via ClientOption functions.
type clientOptions struct {
	httpClient  *http.Client
	log         zerolog.Logger
	catalogTTL  time.Duration
	listTimeout time.Duration
	callTimeout time.Duration
	sessionWait time.Duration
	toolFilter  []string
	noAutoFetch bool
}

func (o *clientOptions) applyDefaults() {
	if o.catalogTTL == 0 {
		o.catalogTTL = DefaultCatalogTTL
	}
	if o.listTimeout == 0 {
		o.listTimeout = DefaultListTimeout
	}
	if o.callTimeout == 0 {
		o.callTimeout = DefaultCallTimeout
	}
	if o.sessionWait == 0 {
		o.sessionWait = DefaultSessionWait
	}
}

func resolveClientOptions(opts []ClientOption) clientOptions {
	o := clientOptions{log: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	o.applyDefaults()
	return o
}

// WithHTTPClient sets the http.Client used for both channels. The client's
// Timeout should be zero; per-request deadlines come from contexts.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(o *clientOptions) { o.log = log }
}

// WithCatalogTTL sets how long a catalog snapshot stays valid.
func WithCatalogTTL(ttl time.Duration) ClientOption {
	return func(o *clientOptions) { o.catalogTTL = ttl }
}

// WithListTimeout sets the response budget for tools/list requests.
func WithListTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.listTimeout = d }
}

// WithCallTimeout sets the response budget for tools/call requests.
func WithCallTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.callTimeout = d }
}

// WithSessionWait caps how long catalog fetches wait for the session
// handshake before failing.
func WithSessionWait(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.sessionWait = d }
}

// WithToolFilter restricts the catalog to tools whose names match at least
// one of the given doublestar glob patterns.
func WithToolFilter(patterns ...string) ClientOption {
	return func(o *clientOptions) { o.toolFilter = patterns }
}

// WithoutAutoFetch disables the automatic catalog fetch that normally
// follows the session handshake.
func WithoutAutoFetch() ClientOption {
	return func(o *clientOptions) { o.noAutoFetch = true }
}
