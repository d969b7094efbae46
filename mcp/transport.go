package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tao "github.com/SmiLeXio/Tao"
	"github.com/mark3labs/mcp-go/mcp"
)

// envelope is the part of a JSON-RPC request the transport routes on.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// callResponse is a JSON-RPC response carrying a tool result.
type callResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      json.RawMessage     `json:"id"`
	Result  *mcp.CallToolResult `json:"result"`
}

// ServeStdio serves session on the process's standard input and output.
// Logs must go to stderr; stdout carries only protocol messages.
func ServeStdio(ctx context.Context, session *Session) error {
	return Serve(ctx, session, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC messages from r and writes
// responses to w until r is exhausted or ctx is cancelled.
//
// Each tools/call request runs on its own goroutine and responses are
// matched by id, so a slow tool does not hold up other requests. All other
// methods are answered in arrival order. On end of input Serve waits for
// in-flight calls and returns nil.
func Serve(ctx context.Context, session *Session, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := &lineWriter{w: w}
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	var inflight sync.WaitGroup
	defer inflight.Wait()

	session.logger.Info("serving", "tools", session.Registry().Len())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				inflight.Wait()
				select {
				case err := <-readErr:
					return fmt.Errorf("read request: %w", err)
				default:
					session.logger.Info("input closed")
					return nil
				}
			}
			session.handleLine(ctx, line, out, &inflight)
		}
	}
}

func (s *Session) handleLine(ctx context.Context, line []byte, out *lineWriter, inflight *sync.WaitGroup) {
	var env envelope
	err := json.Unmarshal(line, &env)
	if err == nil && env.JSONRPC == mcp.JSONRPC_VERSION && env.Method == string(mcp.MethodToolsCall) && isRequestID(env.ID) {
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			s.serveCall(ctx, env, out)
		}()
		return
	}

	resp := s.handleMessage(ctx, json.RawMessage(line))
	if resp == nil {
		return
	}
	if err := out.write(resp); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

// serveCall answers a tools/call request through the dispatcher so that every
// outcome, including an unknown tool name, is reported as a tool result.
func (s *Session) serveCall(ctx context.Context, env envelope, out *lineWriter) {
	var params callParams
	var res tao.ToolResult

	if err := json.Unmarshal(env.Params, &params); err != nil {
		res = tao.Failure(tao.ToolCall{}, fmt.Errorf("invalid tools/call params: %w", err))
	} else if args, err := decodeArguments(params.Arguments); err != nil {
		res = tao.Failure(tao.ToolCall{Name: params.Name}, err)
	} else {
		res = s.Call(ctx, tao.ToolCall{Name: params.Name, Arguments: args})
	}

	err := out.write(callResponse{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      env.ID,
		Result:  ToMCPCallToolResult(res),
	})
	if err != nil {
		s.logger.Error("write response", "tool", params.Name, "error", err)
	}
}

// decodeArguments accepts an absent or null value as no arguments.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	return args, nil
}

func isRequestID(id json.RawMessage) bool {
	return len(id) > 0 && string(id) != "null"
}

// lineWriter serializes whole messages so concurrent responses never interleave.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err = lw.w.Write(data)
	return err
}
