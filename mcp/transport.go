package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Sender is the outbound half of the transport: it serializes a Request and
// delivers it over the side channel. The Correlator depends only on this.
type Sender interface {
	Send(ctx context.Context, req *Request) error
}

// SSETransport owns one push-channel connection (HTTP GET, text/event-stream)
// and one outbound side-channel sender (plain JSON POST). Inbound event data
// payloads are handed to a single handler in strict arrival order.
type SSETransport struct {
	baseURL      string
	eventsPath   string
	messagesPath string
	httpClient   *http.Client
	log          zerolog.Logger

	handler      func(data []byte)
	onDisconnect func(err error)

	mu        sync.Mutex
	connected bool
	cancel    context.CancelFunc
	body      io.ReadCloser
	done      chan struct{}
}

var _ Sender = (*SSETransport)(nil)

// NewSSETransport creates a transport for the given server base URL.
// Handlers must be set before Connect.
func NewSSETransport(baseURL string, httpClient *http.Client, log zerolog.Logger) *SSETransport {
	if httpClient == nil {
		// The push channel is long-lived; per-request deadlines come from
		// contexts, never a global client timeout.
		httpClient = &http.Client{}
	}
	return &SSETransport{
		baseURL:      strings.TrimRight(baseURL, "/"),
		eventsPath:   DefaultEventsPath,
		messagesPath: DefaultMessagesPath,
		httpClient:   httpClient,
		log:          log,
	}
}

// OnMessage registers the handler invoked for every inbound event payload.
func (t *SSETransport) OnMessage(fn func(data []byte)) { t.handler = fn }

// OnDisconnect registers the handler invoked when the push channel fails.
// It is not called on a deliberate Disconnect.
func (t *SSETransport) OnDisconnect(fn func(err error)) { t.onDisconnect = fn }

// Connect opens the push channel. It resolves once the stream reports open
// (HTTP 200 with an event-stream content type); reading happens on a
// background goroutine from then on.
func (t *SSETransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected {
		t.mu.Unlock()
		return fmt.Errorf("mcp: already connected")
	}
	t.mu.Unlock()

	// The stream outlives the Connect call; its lifetime is controlled by
	// Disconnect, not by the caller's ctx. The caller can still abort a hung
	// dial: ctx cancellation propagates until the handshake succeeds, then
	// is disarmed.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, t.baseURL+t.eventsPath, nil)
	if err != nil {
		stop()
		cancel()
		return fmt.Errorf("mcp: build push channel request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		stop()
		cancel()
		return fmt.Errorf("mcp: open push channel: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		stop()
		resp.Body.Close()
		cancel()
		return fmt.Errorf("mcp: push channel returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		stop()
		resp.Body.Close()
		cancel()
		return fmt.Errorf("mcp: push channel returned content type %q", ct)
	}
	stop()

	t.mu.Lock()
	t.connected = true
	t.cancel = cancel
	t.body = resp.Body
	t.done = make(chan struct{})
	done := t.done
	t.mu.Unlock()

	t.log.Debug().Str("url", t.baseURL+t.eventsPath).Msg("push channel open")

	go func() {
		defer close(done)
		t.readLoop(resp.Body)
	}()
	return nil
}

// readLoop parses SSE frames. Data lines are accumulated until a blank line
// terminates the event, then the joined payload is dispatched. Comments and
// event/id fields are skipped; only the data field matters here.
func (t *SSETransport) readLoop(body io.Reader) {
	reader := bufio.NewReader(body)
	var data bytes.Buffer

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			deliberate := t.markClosed()
			if !deliberate && t.onDisconnect != nil {
				t.log.Warn().Err(err).Msg("push channel lost")
				t.onDisconnect(err)
			}
			return
		}

		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if data.Len() > 0 {
				payload := make([]byte, data.Len())
				copy(payload, data.Bytes())
				data.Reset()
				if t.handler != nil {
					t.handler(payload)
				}
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		default:
			// event:/id:/retry: fields carry nothing we correlate on
		}
	}
}

// markClosed flips the connected flag and reports whether the close was
// deliberate (Disconnect already ran). A failure-path close releases the
// request context and body here so the dead connection holds nothing.
func (t *SSETransport) markClosed() (deliberate bool) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return true
	}
	t.connected = false
	cancel := t.cancel
	body := t.body
	t.cancel = nil
	t.body = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if body != nil {
		body.Close()
	}
	return false
}

// Send POSTs one request envelope to the side channel.
func (t *SSETransport) Send(ctx context.Context, req *Request) error {
	if !t.Connected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("mcp: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+t.messagesPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mcp: build side channel request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("mcp: send %s: %w", req.Method, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mcp: side channel returned status %d for %s", resp.StatusCode, req.Method)
	}
	return nil
}

// Connected reports whether the push channel is open.
func (t *SSETransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Disconnect closes the push channel synchronously. The reader goroutine is
// drained before returning, so no handler fires after Disconnect.
func (t *SSETransport) Disconnect() {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return
	}
	t.connected = false
	cancel := t.cancel
	body := t.body
	done := t.done
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if body != nil {
		body.Close()
	}
	if done != nil {
		<-done
	}
	t.log.Debug().Msg("push channel closed")
}
