// Package agent turns free-text user input into answers backed by remotely
// hosted tools. It provides a three-stage decision pipeline — select a tool
// with a low-temperature model call, invoke it through the [mcp] client,
// format the result for the user — plus a streaming variant that delivers
// the final answer incrementally.
//
// # Quick Start
//
//	client := mcp.NewClient("http://localhost:3001")
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	pipeline := agent.NewPipeline(client, agent.NewAnthropicModel(anthropic.ModelClaudeSonnet4_5))
//	answer, err := pipeline.Run(ctx, "fetch the next 5 products skipping the first 2")
//
// Selection and invocation failures are recoverable: the pipeline answers
// with a best-effort model response that references the failure. Only a
// failure in the final formatting stage is fatal.
//
// # Sub-packages
//
//   - [mcp] is the remote-tool client: SSE push channel, request
//     correlation, tool catalog cache, and invoker.
package agent
