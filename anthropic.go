package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicModel implements Model on top of anthropic-sdk-go. Credentials
// come from the environment the same way the SDK's own client resolves them.
type AnthropicModel struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ Model = (*AnthropicModel)(nil)

// NewAnthropicModel creates a Model backed by the Anthropic Messages API.
func NewAnthropicModel(model anthropic.Model) *AnthropicModel {
	client := anthropic.NewClient()
	return &AnthropicModel{client: &client, model: model}
}

// Name returns the underlying model identifier.
func (m *AnthropicModel) Name() string { return string(m.model) }

// Complete performs a single non-streaming call and returns the text blocks
// of the reply joined together.
func (m *AnthropicModel) Complete(ctx context.Context, messages []Message, opts CompleteOptions) (*Completion, error) {
	params := m.params(messages, opts)

	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Completion{
		Text: text.String(),
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}

// Stream performs a streaming call, forwarding text deltas as fragments.
func (m *AnthropicModel) Stream(ctx context.Context, messages []Message, opts CompleteOptions) (*TokenStream, error) {
	params := m.params(messages, opts)

	stream := m.client.Messages.NewStreaming(ctx, params)
	fragments := make(chan string, DefaultStreamBufferSize)
	ts := NewTokenStream(fragments)

	go func() {
		defer close(fragments)
		defer stream.Close()

		var acc anthropic.Message
		for stream.Next() {
			event := stream.Current()
			_ = acc.Accumulate(event)
			if event.Type == "content_block_delta" && event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				select {
				case fragments <- event.Delta.Text:
				case <-ctx.Done():
					ts.SetErr(ctx.Err())
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			ts.SetErr(fmt.Errorf("anthropic: %w", err))
			return
		}
		ts.SetUsage(Usage{
			InputTokens:  acc.Usage.InputTokens,
			OutputTokens: acc.Usage.OutputTokens,
		})
	}()

	return ts, nil
}

// params maps role-tagged messages onto the Messages API shape. System
// messages are lifted into the system prompt; the rest become the
// conversation turns.
func (m *AnthropicModel) params(messages []Message, opts CompleteOptions) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       m.model,
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = DefaultMaxTokens
	}

	var system []anthropic.TextBlockParam
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case RoleAssistant:
			params.Messages = append(params.Messages,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	if len(system) > 0 {
		params.System = system
	}
	return params
}
