package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// outcome settles a pending request exactly once.
type outcome struct {
	result json.RawMessage
	err    error
}

// pendingRequest is the correlator's record of one in-flight request. It is
// owned by the correlator for its lifetime and removed exactly once, either
// by a matching response or by timeout, never both.
type pendingRequest struct {
	id         string
	method     string
	generation uint64
	createdAt  time.Time
	ch         chan outcome // buffered, settled at most once
}

// Correlator matches responses arriving on the push channel to requests sent
// over the side channel by request id, and times out unanswered requests.
type Correlator struct {
	sender  Sender
	session *sessionManager
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

func newCorrelator(sender Sender, session *sessionManager, log zerolog.Logger) *Correlator {
	return &Correlator{
		sender:  sender,
		session: session,
		log:     log,
		pending: make(map[string]*pendingRequest),
	}
}

// Call sends {protocolVersion, method, params, id} over the side channel and
// waits for the correlated response. It returns the response's result
// payload, the remote error as a *ToolExecutionError, a *RequestTimeoutError
// when the budget elapses, or ctx.Err if the caller gives up first. In every
// failure path the pending entry is gone by the time Call returns, so a late
// response finds nothing and is dropped.
func (c *Correlator) Call(ctx context.Context, method string, params RequestParams, timeout time.Duration) (json.RawMessage, error) {
	entry := &pendingRequest{
		id:         newRequestID(),
		method:     method,
		generation: c.session.currentGeneration(),
		createdAt:  time.Now(),
		ch:         make(chan outcome, 1),
	}

	c.mu.Lock()
	c.pending[entry.id] = entry
	c.mu.Unlock()

	req := &Request{
		ProtocolVersion: ProtocolVersion,
		Method:          method,
		Params:          params,
		ID:              entry.id,
	}

	if err := c.sender.Send(ctx, req); err != nil {
		c.remove(entry.id)
		return nil, err
	}

	c.log.Debug().Str("id", entry.id).Str("method", method).Msg("request sent")

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-entry.ch:
		return out.result, out.err
	case <-timer.C:
		if !c.remove(entry.id) {
			// Resolved between the timer firing and the removal; the
			// outcome is already buffered.
			out := <-entry.ch
			return out.result, out.err
		}
		c.log.Warn().Str("id", entry.id).Str("method", method).Dur("timeout", timeout).Msg("request timed out")
		return nil, &RequestTimeoutError{Method: method, ID: entry.id, Timeout: timeout}
	case <-ctx.Done():
		if !c.remove(entry.id) {
			out := <-entry.ch
			return out.result, out.err
		}
		return nil, ctx.Err()
	}
}

// resolve settles the pending request matching the response id. It reports
// false for unknown ids (late or never issued) so the dispatcher can log the
// drop. A response whose request was issued under an older session
// generation rejects the caller with ErrStaleGeneration instead of silently
// mixing contexts.
func (c *Correlator) resolve(msg *inboundMessage) bool {
	c.mu.Lock()
	entry, ok := c.pending[msg.ID]
	if ok {
		delete(c.pending, msg.ID)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}

	if gen := c.session.currentGeneration(); entry.generation != gen {
		c.log.Warn().
			Str("id", entry.id).
			Uint64("issued", entry.generation).
			Uint64("current", gen).
			Msg("rejecting stale resolution")
		entry.ch <- outcome{err: ErrStaleGeneration}
		return true
	}

	if msg.Error != nil {
		entry.ch <- outcome{err: &ToolExecutionError{
			Method:  entry.method,
			Code:    msg.Error.Code,
			Message: msg.Error.Message,
			Data:    msg.Error.Data,
		}}
		return true
	}

	entry.ch <- outcome{result: msg.Result}
	return true
}

// remove deletes a pending entry, reporting whether it was still registered.
func (c *Correlator) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; !ok {
		return false
	}
	delete(c.pending, id)
	return true
}

// pendingCount reports the number of outstanding requests.
func (c *Correlator) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
