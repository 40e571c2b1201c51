package agent

// Pipeline defaults.
const (
	// DefaultSelectTemperature keeps tool selection near-deterministic.
	DefaultSelectTemperature = 0.1

	// DefaultFormatTemperature allows some variety in the final answer.
	DefaultFormatTemperature = 0.7

	// DefaultMaxTokens is the default maximum output tokens per model call.
	DefaultMaxTokens = 1024

	// DefaultStreamBufferSize is the channel buffer size for streaming
	// events and token fragments.
	DefaultStreamBufferSize = 64
)
