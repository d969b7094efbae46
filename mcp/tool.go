// Package mcp serves a Tao tool registry over the Model Context Protocol and
// provides the parent-side client for talking to such servers.
//
// # Serving Tools
//
// A Session seals a registry, wraps it in a dispatcher, and advertises its
// tools. Serve runs the newline-delimited JSON-RPC loop over any reader and
// writer pair; ServeStdio uses the process's standard streams:
//
//	registry := tool.NewRegistry().Add(tool.FileTools()...)
//	session := mcp.NewSession(registry,
//	    mcp.WithName("tao-fs"),
//	    mcp.WithDispatcherOptions(tool.WithTimeout(5*time.Minute)),
//	)
//	if err := mcp.ServeStdio(ctx, session); err != nil {
//	    log.Fatal(err)
//	}
//
// Every tools/call request is answered with a tool result. Unknown tools,
// invalid arguments, and handler faults come back with isError set rather
// than as JSON-RPC errors.
//
// # Calling Servers
//
// Client spawns a server subprocess and exposes its tools:
//
//	c, err := mcp.Dial(ctx, "tao-fs", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res := c.Call(ctx, tao.ToolCall{Name: "list_directory", Arguments: map[string]any{"path": "."}})
package mcp

import (
	"encoding/json"
	"errors"
	"strings"

	tao "github.com/SmiLeXio/Tao"
	"github.com/mark3labs/mcp-go/mcp"
)

// ToMCPTool converts a Tool to an MCP Tool.
// The rendered Parameters schema is used as the MCP Tool's RawInputSchema.
func ToMCPTool(t tao.Tool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// ToMCPTools converts a slice of Tools to MCP Tools.
func ToMCPTools(tools []tao.Tool) []mcp.Tool {
	result := make([]mcp.Tool, len(tools))
	for i, t := range tools {
		result[i] = ToMCPTool(t)
	}
	return result
}

// FromMCPTool converts an MCP Tool to a Tool.
// Only the JSON schema is carried over; Params stays empty because remote
// tools are bound by the server that owns them.
func FromMCPTool(t mcp.Tool) tao.Tool {
	var schema json.RawMessage

	if len(t.RawInputSchema) > 0 {
		schema = t.RawInputSchema
	} else {
		data, err := json.Marshal(t.InputSchema)
		if err == nil {
			schema = data
		}
	}

	return tao.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// FromMCPTools converts a slice of MCP Tools to Tools.
func FromMCPTools(tools []mcp.Tool) []tao.Tool {
	result := make([]tao.Tool, len(tools))
	for i, t := range tools {
		result[i] = FromMCPTool(t)
	}
	return result
}

// ToMCPCallToolRequest converts a ToolCall to an MCP CallToolRequest.
func ToMCPCallToolRequest(call tao.ToolCall) mcp.CallToolRequest {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: call.Name,
		},
	}
	if call.Arguments != nil {
		req.Params.Arguments = call.Arguments
	}
	return req
}

// ToMCPCallToolResult converts a ToolResult to an MCP CallToolResult.
// A list payload becomes one text content item per element.
func ToMCPCallToolResult(result tao.ToolResult) *mcp.CallToolResult {
	if result.IsError {
		return mcp.NewToolResultError(result.Error)
	}

	items := result.Payload.Strings()
	content := make([]mcp.Content, 0, len(items))
	for _, s := range items {
		content = append(content, mcp.NewTextContent(s))
	}
	return &mcp.CallToolResult{Content: content}
}

// FromMCPCallToolResult converts an MCP CallToolResult to a ToolResult.
// Several text items are read back as a list payload.
func FromMCPCallToolResult(call tao.ToolCall, result *mcp.CallToolResult) tao.ToolResult {
	if result == nil {
		return tao.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Error:      "empty result",
			IsError:    true,
		}
	}

	var parts []string
	for _, c := range result.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, text.Text)
			continue
		}
		if data, err := json.Marshal(c); err == nil {
			parts = append(parts, string(data))
		}
	}

	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			parts = append(parts, string(data))
		}
	}

	if result.IsError {
		return tao.Failure(call, errors.New(strings.Join(parts, "\n")))
	}

	payload := tao.Text(strings.Join(parts, "\n"))
	if len(parts) > 1 {
		payload = tao.List(parts)
	}
	return tao.Success(call, payload)
}
