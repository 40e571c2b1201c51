package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shahidain/langchain-ai-agent/internal/budget"
	"github.com/shahidain/langchain-ai-agent/mcp"
)

// ToolClient is the remote-tool capability the pipeline consumes.
// *mcp.Client satisfies it.
type ToolClient interface {
	Tools(ctx context.Context, forceRefresh bool) ([]mcp.ToolDescriptor, error)
	Lookup(name string) (mcp.ToolDescriptor, bool)
	Schema(name string) (mcp.InputSchema, bool)
	CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error)
}

// Pipeline turns free-text user input into a final answer through three
// stages: select a tool, invoke it, format the result. Selection and
// invocation failures are recoverable — the pipeline substitutes a
// best-effort model answer; only a format-stage failure is fatal.
//
// A Pipeline is safe for concurrent use; per-run state lives in a runState
// created at entry and discarded at exit.
type Pipeline struct {
	client  ToolClient
	model   Model
	tracker *budget.Tracker
	opts    pipelineOptions
}

// runState is the transient per-run pipeline context.
type runState struct {
	runID     string
	input     string
	selection Selection
	invoked   bool
	data      string // tool result, or fallback text passed through
	startedAt time.Time
}

// NewPipeline creates a pipeline over the given tool client and model.
func NewPipeline(client ToolClient, model Model, opts ...PipelineOption) *Pipeline {
	resolved := resolvePipelineOptions(opts)
	return &Pipeline{
		client:  client,
		model:   model,
		tracker: budget.NewTracker(resolved.maxBudget, resolved.pricing),
		opts:    resolved,
	}
}

// Run executes select → invoke → format and returns the final answer text.
func (p *Pipeline) Run(ctx context.Context, input string) (string, error) {
	run := p.newRun(input)

	p.selectStage(ctx, run)
	p.invokeStage(ctx, run)

	if err := p.checkBudget(); err != nil {
		return "", err
	}

	completion, err := p.model.Complete(ctx, p.formatMessages(run), CompleteOptions{
		Temperature: p.opts.formatTemperature,
		MaxTokens:   p.opts.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("agent: format stage: %w", err)
	}
	p.tracker.Record(p.model.Name(), budget.Usage(completion.Usage))

	p.opts.log.Debug().Str("run", run.runID).Dur("took", time.Since(run.startedAt)).Msg("pipeline done")
	return completion.Text, nil
}

// RunStream executes select and invoke identically to Run, then streams the
// format stage incrementally. Any stage failure is delivered as a one-shot
// error message through the stream rather than returned.
func (p *Pipeline) RunStream(ctx context.Context, input string) *AnswerStream {
	stream := newAnswerStream(p.opts.streamBufferSize)

	go func() {
		defer stream.finish()
		run := p.newRun(input)

		stream.emit(&StageEvent{Stage: StageSelecting})
		p.selectStage(ctx, run)

		if run.selection.ToolChosen() {
			stream.emit(&StageEvent{Stage: StageInvoking, Tool: run.selection.Tool})
		}
		p.invokeStage(ctx, run)

		if err := p.checkBudget(); err != nil {
			p.failStream(stream, run, err)
			return
		}

		stream.emit(&StageEvent{Stage: StageFormatting, Tool: run.selection.Tool})
		ts, err := p.model.Stream(ctx, p.formatMessages(run), CompleteOptions{
			Temperature: p.opts.formatTemperature,
			MaxTokens:   p.opts.maxTokens,
		})
		if err != nil {
			p.failStream(stream, run, fmt.Errorf("agent: format stage: %w", err))
			return
		}

		var text strings.Builder
		for ts.Next() {
			text.WriteString(ts.Current())
			stream.emit(&DeltaEvent{Delta: ts.Current()})
		}
		if err := ts.Err(); err != nil {
			p.failStream(stream, run, fmt.Errorf("agent: format stage: %w", err))
			return
		}
		p.tracker.Record(p.model.Name(), budget.Usage(ts.Usage()))

		stream.emit(&StageEvent{Stage: StageDone, Tool: run.selection.Tool})
		stream.emit(&ResultEvent{
			RunID:     run.runID,
			Text:      text.String(),
			Usage:     Usage(p.tracker.TotalUsage()),
			TotalCost: p.tracker.TotalCost(),
		})
	}()

	return stream
}

// failStream delivers a stage failure through the streaming interface: one
// DeltaEvent carrying the message, then an error-flagged ResultEvent.
func (p *Pipeline) failStream(stream *AnswerStream, run *runState, err error) {
	p.opts.log.Error().Str("run", run.runID).Err(err).Msg("pipeline failed")
	msg := fmt.Sprintf("Sorry, I could not complete that request: %s", err)
	stream.emit(&StageEvent{Stage: StageFailed, Tool: run.selection.Tool})
	stream.emit(&DeltaEvent{Delta: msg})
	stream.emit(&ResultEvent{
		RunID:     run.runID,
		Text:      msg,
		IsError:   true,
		Usage:     Usage(p.tracker.TotalUsage()),
		TotalCost: p.tracker.TotalCost(),
	})
}

func (p *Pipeline) newRun(input string) *runState {
	return &runState{
		runID:     generateID(PrefixRun),
		input:     input,
		startedAt: time.Now(),
	}
}

// selectStage asks the model to pick a tool for the input. Every failure
// here is recoverable: the run continues with a plain-text selection whose
// text describes the problem, and the format stage produces the best-effort
// answer.
func (p *Pipeline) selectStage(ctx context.Context, run *runState) {
	tools, err := p.client.Tools(ctx, false)
	if err != nil {
		p.opts.log.Warn().Str("run", run.runID).Err(err).Msg("tool discovery failed, answering without tools")
		run.selection = Selection{Text: fmt.Sprintf("tool discovery failed: %s", err)}
		return
	}

	messages := []Message{
		{Role: RoleSystem, Content: buildSelectPrompt(tools, p.opts.systemHint)},
		{Role: RoleUser, Content: run.input},
	}
	completion, err := p.model.Complete(ctx, messages, CompleteOptions{
		Temperature: p.opts.selectTemperature,
		MaxTokens:   p.opts.maxTokens,
	})
	if err != nil {
		p.opts.log.Warn().Str("run", run.runID).Err(err).Msg("select stage failed, answering without tools")
		run.selection = Selection{Text: fmt.Sprintf("tool selection failed: %s", err)}
		return
	}
	p.tracker.Record(p.model.Name(), budget.Usage(completion.Usage))

	run.selection = classifyReply(completion.Text)
	if run.selection.ToolChosen() {
		if inputSchema, ok := p.client.Schema(run.selection.Tool); ok {
			run.selection.Args = coerceArgs(inputSchema, run.selection.Args)
		}
		p.opts.log.Debug().Str("run", run.runID).Str("tool", run.selection.Tool).Msg("tool selected")
	}
}

// invokeStage calls the selected tool. No tool, or a tool the catalog does
// not know, passes the selection's fallback text straight through unchanged.
// An invocation failure becomes data for the format stage, so the final
// answer references the failure instead of raising it.
func (p *Pipeline) invokeStage(ctx context.Context, run *runState) {
	if !run.selection.ToolChosen() {
		run.data = run.selection.Text
		return
	}
	if _, ok := p.client.Lookup(run.selection.Tool); !ok {
		p.opts.log.Warn().Str("run", run.runID).Str("tool", run.selection.Tool).Msg("selected tool not in catalog")
		run.data = run.selection.Text
		return
	}

	result, err := p.client.CallTool(ctx, run.selection.Tool, run.selection.Args)
	if err != nil {
		p.opts.log.Warn().Str("run", run.runID).Str("tool", run.selection.Tool).Err(err).Msg("tool invocation failed")
		run.data = fmt.Sprintf("tool %q failed: %s", run.selection.Tool, err)
		run.invoked = true
		return
	}
	run.data = stringifyResult(result)
	run.invoked = true
}

// formatMessages builds the final model call: the original input plus the
// tool result (or the unmodified fallback text).
func (p *Pipeline) formatMessages(run *runState) []Message {
	var user strings.Builder
	fmt.Fprintf(&user, "User request: %s\n", run.input)
	if run.data != "" {
		fmt.Fprintf(&user, "\nData:\n%s\n", run.data)
	} else {
		user.WriteString("\nNo data is available; answer from general knowledge.\n")
	}
	return []Message{
		{Role: RoleSystem, Content: formatSystemPrompt},
		{Role: RoleUser, Content: user.String()},
	}
}

const formatSystemPrompt = "You are a helpful assistant. Convert the provided data into a clear, " +
	"natural-language answer to the user's request. If the data describes a failure, " +
	"explain it briefly instead of inventing a result."

// checkBudget aborts a run between stages once the cost ceiling is hit.
func (p *Pipeline) checkBudget() error {
	if p.tracker.Exhausted() {
		return ErrBudgetExhausted
	}
	return nil
}

// stringifyResult renders a raw tool result as text: JSON strings are
// unquoted, everything else keeps its JSON form.
func stringifyResult(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Usage returns the cumulative token usage across this pipeline's runs.
func (p *Pipeline) Usage() Usage { return Usage(p.tracker.TotalUsage()) }

// Cost returns the cumulative USD cost across this pipeline's runs.
func (p *Pipeline) Cost() string { return p.tracker.TotalCost().StringFixed(6) }
