// Package tao defines the core types shared by the Tao tool servers.
//
// A Tao server is a process that exposes a fixed set of named tools to an
// orchestrating agent over MCP. Every server is assembled from the same parts:
//
//   - [Tool] and [Param] describe an operation and its ordered parameter schema
//   - [ToolCall] is one invocation request with untyped arguments
//   - [ToolResult] is the normalized outcome: a [Payload] or an error text
//
// The registry, argument binding, and the dispatcher live in the
// [github.com/SmiLeXio/Tao/tool] package. The stdio transport and server
// session live in [github.com/SmiLeXio/Tao/mcp].
//
// # Results
//
// Handlers return either a single string or an ordered list of strings:
//
//	tao.Text("wrote 5 bytes to /tmp/x/y.txt")
//	tao.List([]string{"a.txt", "b.txt"})
//
// The dispatcher turns every failure, including panics and deadline expiry,
// into a ToolResult with IsError set, so callers see one uniform shape.
package tao
