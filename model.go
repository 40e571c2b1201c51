package agent

import (
	"context"
	"sync"
)

// Role tags a message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in a model conversation.
type Message struct {
	Role    Role
	Content string
}

// Usage holds token counts for a single model call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add returns the element-wise sum of two usages.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Completion is the outcome of a non-streaming model call.
type Completion struct {
	Text  string
	Usage Usage
}

// CompleteOptions tunes a single model call.
type CompleteOptions struct {
	Temperature float64
	MaxTokens   int
}

// Model is the language-model capability the pipeline consumes: given a list
// of role-tagged messages, return text, or a sequence of text fragments
// terminating in completion. The model call itself is an external
// collaborator; [AnthropicModel] is the production implementation.
type Model interface {
	// Name identifies the underlying model, used for cost accounting.
	Name() string

	// Complete returns the model's full reply.
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (*Completion, error)

	// Stream returns the reply as incremental text fragments.
	Stream(ctx context.Context, messages []Message, opts CompleteOptions) (*TokenStream, error)
}

// TokenStream is an iterator over text fragments from a streaming model
// call. Usage and Err are populated once Next has returned false.
//
//	ts, err := model.Stream(ctx, messages, opts)
//	for ts.Next() {
//	    fmt.Print(ts.Current())
//	}
//	if err := ts.Err(); err != nil {
//	    // handle
//	}
type TokenStream struct {
	fragments chan string
	current   string
	done      bool

	mu    sync.Mutex
	err   error
	usage Usage
}

// NewTokenStream creates a stream fed by the given channel. The producer
// closes the channel after the final fragment and may set error and usage
// before closing.
func NewTokenStream(fragments chan string) *TokenStream {
	return &TokenStream{fragments: fragments}
}

// Next advances to the next fragment. Returns false when the stream is
// exhausted.
func (s *TokenStream) Next() bool {
	if s.done {
		return false
	}
	fragment, ok := <-s.fragments
	if !ok {
		s.done = true
		return false
	}
	s.current = fragment
	return true
}

// Current returns the most recent fragment returned by Next.
func (s *TokenStream) Current() string { return s.current }

// Err returns the error that terminated the stream, if any.
func (s *TokenStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Usage returns the token usage of the completed call.
func (s *TokenStream) Usage() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// SetErr records the terminating error. Producer-side.
func (s *TokenStream) SetErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// SetUsage records the call's token usage. Producer-side.
func (s *TokenStream) SetUsage(usage Usage) {
	s.mu.Lock()
	s.usage = usage
	s.mu.Unlock()
}
