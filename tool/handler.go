package tool

import (
	"context"

	tao "github.com/SmiLeXio/Tao"
)

// Handler executes a tool call with bound arguments and returns its payload.
// The context carries cancellation and the per-invocation deadline.
// Arguments have already been validated and coerced against the tool's params.
type Handler func(ctx context.Context, args tao.Args) (tao.Payload, error)

// Output is the set of return types a typed handler may produce.
type Output interface {
	string | []string
}

// TypedHandler is a function that executes a tool call with typed arguments.
// The args parameter is decoded from the bound arguments.
type TypedHandler[T any, R Output] func(ctx context.Context, args T) (R, error)
