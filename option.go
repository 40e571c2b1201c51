package agent

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shahidain/langchain-ai-agent/internal/budget"
)

// PipelineOption configures a Pipeline via the functional options pattern.
type PipelineOption func(*pipelineOptions)

// pipelineOptions holds all configurable fields set via PipelineOption
// functions.
type pipelineOptions struct {
	selectTemperature float64
	formatTemperature float64
	maxTokens         int
	streamBufferSize  int
	systemHint        string
	maxBudget         decimal.Decimal
	pricing           map[string]budget.ModelPricing
	log               zerolog.Logger

	selectTemperatureSet bool
	formatTemperatureSet bool
}

func (o *pipelineOptions) applyDefaults() {
	if !o.selectTemperatureSet {
		o.selectTemperature = DefaultSelectTemperature
	}
	if !o.formatTemperatureSet {
		o.formatTemperature = DefaultFormatTemperature
	}
	if o.maxTokens == 0 {
		o.maxTokens = DefaultMaxTokens
	}
	if o.streamBufferSize == 0 {
		o.streamBufferSize = DefaultStreamBufferSize
	}
	if o.pricing == nil {
		o.pricing = budget.DefaultPricing
	}
}

func resolvePipelineOptions(opts []PipelineOption) pipelineOptions {
	o := pipelineOptions{log: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	o.applyDefaults()
	return o
}

// WithSelectTemperature sets the sampling temperature for the select stage.
// The default is deliberately low; selection should be deterministic.
func WithSelectTemperature(t float64) PipelineOption {
	return func(o *pipelineOptions) {
		o.selectTemperature = t
		o.selectTemperatureSet = true
	}
}

// WithFormatTemperature sets the sampling temperature for the format stage.
func WithFormatTemperature(t float64) PipelineOption {
	return func(o *pipelineOptions) {
		o.formatTemperature = t
		o.formatTemperatureSet = true
	}
}

// WithMaxTokens sets the maximum output tokens per model call.
func WithMaxTokens(n int) PipelineOption {
	return func(o *pipelineOptions) { o.maxTokens = n }
}

// WithSystemHint prepends an extra instruction to the select-stage prompt.
func WithSystemHint(hint string) PipelineOption {
	return func(o *pipelineOptions) { o.systemHint = hint }
}

// WithMaxBudget sets a USD cost ceiling across a pipeline's runs. A run is
// aborted between stages once the ceiling is hit. Zero means unlimited.
func WithMaxBudget(maxUSD decimal.Decimal) PipelineOption {
	return func(o *pipelineOptions) { o.maxBudget = maxUSD }
}

// WithPricing overrides the built-in model pricing table.
func WithPricing(pricing map[string]budget.ModelPricing) PipelineOption {
	return func(o *pipelineOptions) { o.pricing = pricing }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) PipelineOption {
	return func(o *pipelineOptions) { o.log = log }
}
