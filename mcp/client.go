package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tao "github.com/SmiLeXio/Tao"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Client is the parent-side view of one tool server.
//
// Client is safe for concurrent use. The tool list is fetched once when the
// client connects and can be refreshed with [Client.Refresh].
type Client struct {
	client *client.Client

	mu    sync.RWMutex
	tools []tao.Tool
	index map[string]int
}

// Dial starts command as a tool server subprocess and connects to it over
// its standard streams. env entries ("KEY=value") are added to the current
// environment. The server's stderr is copied to this process's stderr.
//
// The subprocess is bound to ctx: cancelling ctx kills it.
func Dial(ctx context.Context, command string, env []string, args ...string) (*Client, error) {
	tr := transport.NewStdio(command, env, args...)
	if err := tr.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}
	go func() {
		_, _ = io.Copy(os.Stderr, tr.Stderr())
	}()

	c, err := NewClientFrom(ctx, client.NewClient(tr))
	if err != nil {
		_ = tr.Close()
		return nil, err
	}
	return c, nil
}

// NewClientFrom initializes an existing MCP client and fetches its tools.
// It is used for in-process servers and custom transports.
func NewClientFrom(ctx context.Context, c *client.Client) (*Client, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "taoctl",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	cl := &Client{client: c}
	if err := cl.Refresh(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return cl, nil
}

// Close closes the connection and waits for a spawned server to exit.
func (c *Client) Close() error {
	return c.client.Close()
}

// Refresh fetches the current tool list from the server.
func (c *Client) Refresh(ctx context.Context) error {
	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	tools := FromMCPTools(result.Tools)
	index := make(map[string]int, len(tools))
	for i, t := range tools {
		index[t.Name] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = tools
	c.index = index
	return nil
}

// Tools returns the server's tools in the order the server listed them.
func (c *Client) Tools() []tao.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]tao.Tool(nil), c.tools...)
}

// Tool returns the named tool definition.
func (c *Client) Tool(name string) (tao.Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[name]
	if !ok {
		return tao.Tool{}, false
	}
	return c.tools[i], true
}

// Names returns the names of the server's tools.
func (c *Client) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of tools the server advertises.
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Has reports whether the server advertises a tool with the given name.
func (c *Client) Has(name string) bool {
	_, ok := c.Tool(name)
	return ok
}

// Call invokes a tool on the server. Transport and protocol failures are
// reported as failed results, the same as tool failures.
func (c *Client) Call(ctx context.Context, call tao.ToolCall) tao.ToolResult {
	result, err := c.client.CallTool(ctx, ToMCPCallToolRequest(call))
	if err != nil {
		return tao.Failure(call, err)
	}
	return FromMCPCallToolResult(call, result)
}
