package tool

import (
	"errors"
	"fmt"
)

// ErrRegistrySealed is returned when registering into a registry that is already serving.
var ErrRegistrySealed = errors.New("tool: registry is sealed")

// ErrUnknownTool is returned when a tool call references an unregistered tool.
type ErrUnknownTool struct {
	Name string
}

// Error returns a formatted error message including the tool name.
func (e *ErrUnknownTool) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

// Error returns a formatted error message including the duplicate tool name.
func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ErrMissingArgument is returned when a required parameter is absent from a call.
type ErrMissingArgument struct {
	Tool  string
	Param string
}

func (e *ErrMissingArgument) Error() string {
	return fmt.Sprintf("%s: missing required argument %q", e.Tool, e.Param)
}

// ErrArgumentType is returned when an argument cannot be coerced to its declared type.
type ErrArgumentType struct {
	Tool  string
	Param string
	Want  string
	Value any
	Err   error
}

func (e *ErrArgumentType) Error() string {
	msg := fmt.Sprintf("%s: argument %q must be %s, got %T", e.Tool, e.Param, e.Want, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrArgumentType) Unwrap() error {
	return e.Err
}

// ErrUnexpectedArgument is returned for undeclared arguments when the
// dispatcher rejects unknown arguments.
type ErrUnexpectedArgument struct {
	Tool  string
	Param string
}

func (e *ErrUnexpectedArgument) Error() string {
	return fmt.Sprintf("%s: unexpected argument %q", e.Tool, e.Param)
}

// ErrToolExecution wraps faults from tool handler execution, including panics.
type ErrToolExecution struct {
	Name     string
	Err      error
	Panicked bool
}

// Error returns a formatted error message including the tool name and cause.
func (e *ErrToolExecution) Error() string {
	if e.Panicked {
		return fmt.Sprintf("%s failed: handler panic: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ErrToolExecution) Unwrap() error {
	return e.Err
}
