package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tao "github.com/SmiLeXio/Tao"
	"github.com/google/uuid"
)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout sets the per-invocation deadline. Zero disables it.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.timeout = d
	}
}

// WithUnknownArguments sets how undeclared arguments are treated.
// The default is IgnoreUnknown.
func WithUnknownArguments(policy UnknownArguments) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.unknownArgs = policy
	}
}

// WithLogger sets the logger used for per-invocation log lines.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.logger = logger
	}
}

// WithMetrics records invocation metrics.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.metrics = m
	}
}

// Dispatcher validates, executes, and fault-isolates tool invocations.
// It holds a read-only reference to the registry and keeps no state
// between calls, so Dispatch is safe for concurrent use.
type Dispatcher struct {
	registry    *Registry
	timeout     time.Duration
	unknownArgs UnknownArguments
	logger      *slog.Logger
	metrics     *Metrics
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs one invocation and always returns a result.
// Unknown tools, malformed arguments, handler errors, handler panics, and
// deadline expiry all produce a result with IsError set.
func (d *Dispatcher) Dispatch(ctx context.Context, call tao.ToolCall) tao.ToolResult {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	log := d.logger.With("tool", call.Name, "call_id", call.ID)

	def, err := d.registry.Lookup(call.Name)
	if err != nil {
		log.Warn("unknown tool")
		d.metrics.reject("unknown", OutcomeNotFound)
		return tao.Failure(call, err)
	}

	args, err := BindArgs(def.Tool, call.Arguments, d.unknownArgs)
	if err != nil {
		log.Warn("invalid arguments", "error", err)
		d.metrics.reject(call.Name, OutcomeInvalid)
		return tao.Failure(call, err)
	}

	start := time.Now()
	d.metrics.begin()
	payload, err := d.invoke(ctx, def, args)
	elapsed := time.Since(start)

	if err != nil {
		outcome := OutcomeFault
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = OutcomeTimeout
		}
		d.metrics.observe(call.Name, outcome, elapsed)
		log.Error("tool failed", "duration", elapsed, "error", err)
		return tao.Failure(call, err)
	}

	d.metrics.observe(call.Name, OutcomeSuccess, elapsed)
	log.Info("tool completed", "duration", elapsed)
	return tao.Success(call, payload)
}

// cancelGrace is how long a cancelled call waits for its handler to return.
const cancelGrace = 50 * time.Millisecond

type outcome struct {
	payload tao.Payload
	err     error
}

// invoke runs the handler on its own goroutine so that a deadline can
// interrupt the wait even when the handler ignores its context.
func (d *Dispatcher) invoke(ctx context.Context, def Definition, args tao.Args) (tao.Payload, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		done <- runIsolated(ctx, def, args)
	}()

	select {
	case out := <-done:
		// A handler that gave up because of our own deadline reports the
		// deadline; otherwise its error is kept.
		if out.err == nil || ctx.Err() == nil || d.timeout == 0 {
			return out.payload, out.err
		}
	case <-ctx.Done():
		// Without our own deadline the caller cancelled; give the handler a
		// moment to report its own error.
		if d.timeout == 0 {
			select {
			case out := <-done:
				return out.payload, out.err
			case <-time.After(cancelGrace):
			}
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && d.timeout > 0 {
		return tao.Payload{}, &ErrToolExecution{
			Name: def.Tool.Name,
			Err:  fmt.Errorf("timed out after %s: %w", d.timeout, ctx.Err()),
		}
	}
	return tao.Payload{}, &ErrToolExecution{Name: def.Tool.Name, Err: ctx.Err()}
}

func runIsolated(ctx context.Context, def Definition, args tao.Args) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			out = outcome{err: &ErrToolExecution{Name: def.Tool.Name, Err: err, Panicked: true}}
		}
	}()

	if def.Handler == nil {
		return outcome{err: &ErrToolExecution{Name: def.Tool.Name, Err: errors.New("no handler registered")}}
	}

	payload, err := def.Handler(ctx, args)
	if err != nil {
		return outcome{err: &ErrToolExecution{Name: def.Tool.Name, Err: err}}
	}
	return outcome{payload: payload}
}
