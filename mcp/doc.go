// Package mcp implements the client side of the remote tool protocol: a
// long-lived Server-Sent-Events push channel for inbound notifications and
// correlated responses, plus a JSON POST side channel for outbound calls.
//
// A [Client] binds the five moving parts together: the [SSETransport] owns
// the two channels, a session manager holds the identifier the server
// announces after connect, the [Correlator] matches asynchronous responses
// to requests by id and times out unanswered ones, the [Catalog] caches the
// discovered tool list with a TTL, and the [Invoker] validates tool calls
// against the catalog before sending them.
//
//	client := mcp.NewClient("http://localhost:3001")
//	if err := client.Connect(ctx); err != nil {
//	    // handle
//	}
//	defer client.Disconnect()
//	tools, err := client.Tools(ctx, false)
//	result, err := client.CallTool(ctx, "getProducts", map[string]any{"limit": 5})
//
// Every pending request is tagged with the session generation it was issued
// under; a response that straddles a reconnect is rejected with
// [ErrStaleGeneration] rather than resolving against the wrong session.
package mcp
