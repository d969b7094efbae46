package tao

import (
	"encoding/json"
	"strings"
)

// ParamType is the semantic type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Param declares one named parameter of a tool.
type Param struct {
	// Name is the argument key used on the wire.
	Name string
	// Type is the semantic type arguments are coerced to.
	Type ParamType
	// Description explains the parameter to the calling agent.
	Description string
	// Required marks parameters that must be present in every call.
	Required bool
	// Default is applied when an optional parameter is absent. Nil means no default.
	Default any
	// Enum restricts string values to the listed options.
	Enum []string
	// Items is the element type for array parameters.
	Items ParamType
}

// Tool defines an operation that can be invoked by the calling agent.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string
	// Description explains what the tool does.
	Description string
	// Params is the ordered parameter schema used for argument binding.
	Params []Param
	// Parameters is the JSON Schema advertised to callers, rendered from Params.
	Parameters json.RawMessage
}

// Args holds bound and coerced arguments keyed by parameter name.
type Args map[string]any

// ToolCall represents a request to invoke a tool.
type ToolCall struct {
	// ID correlates the call with its result and log lines.
	ID string `json:"id"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Arguments are the raw, untyped arguments from the wire.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Payload is the success value of a tool: a single text or an ordered list.
type Payload struct {
	text  string
	items []string
	list  bool
}

// Text creates a single-string payload.
func Text(s string) Payload {
	return Payload{text: s}
}

// List creates an ordered list payload. A nil slice is kept as an empty list.
func List(items []string) Payload {
	if items == nil {
		items = []string{}
	}
	return Payload{items: items, list: true}
}

// IsList reports whether the payload is an ordered list.
func (p Payload) IsList() bool { return p.list }

// Text returns the text of a single-string payload, or the list items joined by newlines.
func (p Payload) Text() string {
	if !p.list {
		return p.text
	}
	return strings.Join(p.items, "\n")
}

// Strings returns the payload as a slice: the list items, or the text as a single element.
func (p Payload) Strings() []string {
	if p.list {
		return p.items
	}
	return []string{p.text}
}

// MarshalJSON encodes list payloads as JSON arrays and text payloads as strings.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.list {
		return json.Marshal(p.items)
	}
	return json.Marshal(p.text)
}

// ToolResult represents the outcome of a tool call.
// Exactly one of Payload and Error is meaningful, selected by IsError.
type ToolResult struct {
	// ToolCallID matches the ID from the corresponding ToolCall.
	ToolCallID string `json:"toolCallId"`
	// Name is the tool that was invoked.
	Name string `json:"name"`
	// Payload is the handler's return value on success.
	Payload Payload `json:"payload"`
	// Error is the human-readable failure description when IsError is set.
	Error string `json:"error,omitempty"`
	// IsError indicates if the result represents a failure.
	IsError bool `json:"isError,omitempty"`
}

// Success builds a successful result.
func Success(call ToolCall, p Payload) ToolResult {
	return ToolResult{ToolCallID: call.ID, Name: call.Name, Payload: p}
}

// Failure builds a failed result carrying err's message.
func Failure(call ToolCall, err error) ToolResult {
	return ToolResult{ToolCallID: call.ID, Name: call.Name, Error: err.Error(), IsError: true}
}

// Content returns the text to present to the caller for either outcome.
func (r ToolResult) Content() string {
	if r.IsError {
		return r.Error
	}
	return r.Payload.Text()
}
