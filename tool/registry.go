package tool

import (
	"iter"
	"slices"
	"sync"

	tao "github.com/SmiLeXio/Tao"
	"github.com/SmiLeXio/Tao/schema"
)

// Definition combines a tool definition with its handler.
type Definition struct {
	Tool    tao.Tool
	Handler Handler
}

// Registry is the append-only catalog of tools served by one process.
// Tools are kept in registration order. Once sealed, the registry rejects
// further registrations and can be shared by concurrent dispatches.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	tools  map[string]Definition
	sealed bool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Definition),
	}
}

// Register adds a tool with its handler to the registry.
// Returns an error if a tool with the same name is already registered,
// if the registry is sealed, or if the tool's params are invalid.
// The JSON schema is rendered from Params when Parameters is empty.
func (r *Registry) Register(t tao.Tool, handler Handler) error {
	if t.Parameters == nil {
		raw, err := schema.ForParams(t.Params)
		if err != nil {
			return err
		}
		t.Parameters = raw
	} else if err := schema.Validate(t.Params); err != nil {
		return err
	}
	t = cloneTool(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	if _, exists := r.tools[t.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: t.Name}
	}

	r.tools[t.Name] = Definition{Tool: t, Handler: handler}
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t tao.Tool, handler Handler) {
	if err := r.Register(t, handler); err != nil {
		panic(err)
	}
}

// Seal freezes the registry. Later calls to Register fail with ErrRegistrySealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup retrieves a tool definition by name.
// Returns ErrUnknownTool if no tool with that name is registered.
func (r *Registry) Lookup(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.tools[name]
	if !ok {
		return Definition{}, &ErrUnknownTool{Name: name}
	}
	def.Tool = cloneTool(def.Tool)
	return def, nil
}

// cloneTool copies the slices of t so callers never share the registry's
// schema storage.
func cloneTool(t tao.Tool) tao.Tool {
	t.Parameters = slices.Clone(t.Parameters)
	if t.Params == nil {
		return t
	}
	params := make([]tao.Param, len(t.Params))
	for i, p := range t.Params {
		p.Enum = slices.Clone(p.Enum)
		params[i] = p
	}
	t.Params = params
	return t
}

// List returns a sequence over all registered definitions in registration order.
// The sequence is evaluated lazily and can be ranged over any number of times.
func (r *Registry) List() iter.Seq[Definition] {
	return func(yield func(Definition) bool) {
		r.mu.RLock()
		names := slices.Clone(r.order)
		r.mu.RUnlock()

		for _, name := range names {
			def, err := r.Lookup(name)
			if err != nil {
				continue
			}
			if !yield(def) {
				return
			}
		}
	}
}

// Tools returns all registered tool definitions in registration order.
func (r *Registry) Tools() []tao.Tool {
	tools := make([]tao.Tool, 0, r.Len())
	for def := range r.List() {
		tools = append(tools, def.Tool)
	}
	return tools
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Registration holds a tool and its handler for fluent registration.
type Registration struct {
	Tool    tao.Tool
	Handler Handler
}

// Func creates a Registration with params derived from the typed handler's argument struct.
// Panics if the argument struct cannot be described.
//
// Example:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("read_file", "Read a file", readFile),
//	    tool.Func("list_directory", "List a directory", listDirectory),
//	)
func Func[T any, R Output](name, description string, fn TypedHandler[T, R]) Registration {
	t, h := MustBind(name, description, fn)
	return Registration{Tool: t, Handler: h}
}

// WithHandler creates a Registration from a Handler and an explicit param list.
// Use this when the params are not described by a struct.
func WithHandler(name, description string, params []tao.Param, h Handler) Registration {
	return Registration{
		Tool: tao.Tool{
			Name:        name,
			Description: description,
			Params:      params,
		},
		Handler: h,
	}
}

// Add registers one or more tools to the registry.
// Panics if any tool is already registered.
// Returns the registry for fluent chaining.
func (r *Registry) Add(regs ...Registration) *Registry {
	for _, reg := range regs {
		r.MustRegister(reg.Tool, reg.Handler)
	}
	return r
}

// RegisterAll registers all registrations, returning the first error encountered.
func RegisterAll(r *Registry, regs []Registration) error {
	for _, reg := range regs {
		if err := r.Register(reg.Tool, reg.Handler); err != nil {
			return err
		}
	}
	return nil
}
