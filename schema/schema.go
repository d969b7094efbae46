package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	tao "github.com/SmiLeXio/Tao"
)

// node is the JSON Schema subset advertised for tool parameters.
type node struct {
	Type        string           `json:"type"`
	Description string           `json:"description,omitempty"`
	Enum        []string         `json:"enum,omitempty"`
	Default     any              `json:"default,omitempty"`
	Items       *node            `json:"items,omitempty"`
	Properties  map[string]*node `json:"properties,omitempty"`
	Required    []string         `json:"required,omitempty"`
}

// Sentinel errors for parameter schema validation.
var (
	// ErrDuplicateParam is returned when two parameters share a name.
	ErrDuplicateParam = errors.New("schema: duplicate parameter")

	// ErrUnknownType is returned for a parameter type outside the supported set.
	ErrUnknownType = errors.New("schema: unknown parameter type")

	// ErrBadDefault is returned when a default value conflicts with the parameter.
	ErrBadDefault = errors.New("schema: invalid default")
)

// ValidationError represents a parameter schema validation failure.
type ValidationError struct {
	Param   string // The parameter name
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("schema: param %q: %s", e.Param, e.Message)
	}
	return fmt.Sprintf("schema: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks a parameter list for internal consistency.
func Validate(params []tao.Param) error {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Name == "" {
			return &ValidationError{Message: "parameter without a name", Err: ErrDuplicateParam}
		}
		if seen[p.Name] {
			return &ValidationError{Param: p.Name, Message: "declared twice", Err: ErrDuplicateParam}
		}
		seen[p.Name] = true

		if !knownType(p.Type) {
			return &ValidationError{Param: p.Name, Message: fmt.Sprintf("type %q", p.Type), Err: ErrUnknownType}
		}
		if p.Type == tao.TypeArray && p.Items != "" && !knownType(p.Items) {
			return &ValidationError{Param: p.Name, Message: fmt.Sprintf("items type %q", p.Items), Err: ErrUnknownType}
		}
		if p.Required && p.Default != nil {
			return &ValidationError{Param: p.Name, Message: "required parameter cannot have a default", Err: ErrBadDefault}
		}
		if s, ok := p.Default.(string); ok && len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return &ValidationError{Param: p.Name, Message: fmt.Sprintf("default %q is not one of %v", s, p.Enum), Err: ErrBadDefault}
		}
	}
	return nil
}

// ForParams renders an ordered parameter list as a JSON Schema object.
func ForParams(params []tao.Param) (json.RawMessage, error) {
	if err := Validate(params); err != nil {
		return nil, err
	}

	root := &node{
		Type:       "object",
		Properties: make(map[string]*node, len(params)),
	}
	for _, p := range params {
		prop := &node{
			Type:        string(p.Type),
			Description: p.Description,
			Enum:        p.Enum,
			Default:     p.Default,
		}
		if p.Type == tao.TypeArray {
			items := p.Items
			if items == "" {
				items = tao.TypeString
			}
			prop.Items = &node{Type: string(items)}
		}
		root.Properties[p.Name] = prop
		if p.Required {
			root.Required = append(root.Required, p.Name)
		}
	}

	data, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// MustForParams is like ForParams but panics on error.
func MustForParams(params []tao.Param) json.RawMessage {
	data, err := ForParams(params)
	if err != nil {
		panic(err)
	}
	return data
}

func knownType(t tao.ParamType) bool {
	switch t {
	case tao.TypeString, tao.TypeInteger, tao.TypeNumber, tao.TypeBoolean, tao.TypeArray, tao.TypeObject:
		return true
	}
	return false
}
