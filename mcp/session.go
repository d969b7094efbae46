package mcp

import (
	"cmp"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"

	tao "github.com/SmiLeXio/Tao"
	"github.com/SmiLeXio/Tao/tool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	name         string
	version      string
	instructions string
	logger       *slog.Logger
	dispatchOpts []tool.DispatcherOption
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) SessionOption {
	return func(c *sessionConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) SessionOption {
	return func(c *sessionConfig) {
		c.version = version
	}
}

// WithInstructions sets the usage hint returned from initialize.
func WithInstructions(text string) SessionOption {
	return func(c *sessionConfig) {
		c.instructions = text
	}
}

// WithLogger sets the logger for the session and its dispatcher.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithDispatcherOptions passes options through to the session's dispatcher.
func WithDispatcherOptions(opts ...tool.DispatcherOption) SessionOption {
	return func(c *sessionConfig) {
		c.dispatchOpts = append(c.dispatchOpts, opts...)
	}
}

// Session binds one sealed registry and its dispatcher to the MCP protocol.
// It keeps no per-request state; all requests on a session share the same
// read-only registry.
type Session struct {
	name       string
	version    string
	logger     *slog.Logger
	dispatcher *tool.Dispatcher
	server     *server.MCPServer
}

// NewSession seals registry and creates a session that advertises its tools.
//
// Example:
//
//	registry := tool.NewRegistry().Add(tool.SearchTools(opts...)...)
//	session := mcp.NewSession(registry, mcp.WithName("tao-search"))
func NewSession(registry *tool.Registry, opts ...SessionOption) *Session {
	cfg := &sessionConfig{
		name:    "tao-tools",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	registry.Seal()

	dispatchOpts := append([]tool.DispatcherOption{tool.WithLogger(cfg.logger)}, cfg.dispatchOpts...)
	s := &Session{
		name:       cfg.name,
		version:    cfg.version,
		logger:     cfg.logger.With("server", cfg.name),
		dispatcher: tool.NewDispatcher(registry, dispatchOpts...),
	}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithToolFilter(registrationOrder(registry)),
	}
	if cfg.instructions != "" {
		serverOpts = append(serverOpts, server.WithInstructions(cfg.instructions))
	}
	s.server = server.NewMCPServer(cfg.name, cfg.version, serverOpts...)

	for def := range registry.List() {
		s.server.AddTool(ToMCPTool(def.Tool), s.toolHandler(def.Tool.Name))
	}

	return s
}

// registrationOrder restores registry order on tools/list, which the MCP
// server otherwise sorts by name.
func registrationOrder(registry *tool.Registry) server.ToolFilterFunc {
	rank := make(map[string]int, registry.Len())
	for i, name := range registry.Names() {
		rank[name] = i
	}
	return func(_ context.Context, tools []mcp.Tool) []mcp.Tool {
		sorted := slices.Clone(tools)
		slices.SortStableFunc(sorted, func(a, b mcp.Tool) int {
			return cmp.Compare(rank[a.Name], rank[b.Name])
		})
		return sorted
	}
}

// toolHandler routes a call accepted by the MCP server through the dispatcher.
func (s *Session) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := s.Call(ctx, tao.ToolCall{Name: name, Arguments: req.GetArguments()})
		return ToMCPCallToolResult(res), nil
	}
}

// Name returns the server name reported to clients.
func (s *Session) Name() string {
	return s.name
}

// Registry returns the sealed registry served by the session.
func (s *Session) Registry() *tool.Registry {
	return s.dispatcher.Registry()
}

// Server returns the underlying MCP server, for use with in-process clients.
func (s *Session) Server() *server.MCPServer {
	return s.server
}

// Call dispatches one invocation. It never fails; failures are reported in
// the returned result.
func (s *Session) Call(ctx context.Context, call tao.ToolCall) tao.ToolResult {
	return s.dispatcher.Dispatch(ctx, call)
}

// handleMessage answers one protocol message other than tools/call.
// It returns nil for notifications.
func (s *Session) handleMessage(ctx context.Context, raw json.RawMessage) mcp.JSONRPCMessage {
	return s.server.HandleMessage(ctx, raw)
}
