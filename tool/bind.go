package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	tao "github.com/SmiLeXio/Tao"
	"github.com/spf13/cast"
)

// UnknownArguments selects how binding treats arguments that no parameter declares.
type UnknownArguments int

const (
	// IgnoreUnknown drops undeclared arguments so newer callers keep working.
	IgnoreUnknown UnknownArguments = iota
	// RejectUnknown fails the call with ErrUnexpectedArgument.
	RejectUnknown
)

// BindArgs validates raw wire arguments against a tool's params and returns
// the coerced arguments. Defaults are filled in for absent optional params.
func BindArgs(t tao.Tool, raw map[string]any, policy UnknownArguments) (tao.Args, error) {
	args := make(tao.Args, len(t.Params))

	for _, p := range t.Params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, &ErrMissingArgument{Tool: t.Name, Param: p.Name}
			}
			if p.Default != nil {
				args[p.Name] = p.Default
			}
			continue
		}

		coerced, err := coerce(p, v)
		if err != nil {
			return nil, &ErrArgumentType{Tool: t.Name, Param: p.Name, Want: describeType(p), Value: v, Err: err}
		}
		if len(p.Enum) > 0 {
			if s, _ := coerced.(string); !slices.Contains(p.Enum, s) {
				return nil, &ErrArgumentType{
					Tool:  t.Name,
					Param: p.Name,
					Want:  describeType(p),
					Value: v,
					Err:   fmt.Errorf("%q is not allowed", s),
				}
			}
		}
		args[p.Name] = coerced
	}

	if policy == RejectUnknown {
		for name := range raw {
			if !declares(t.Params, name) {
				return nil, &ErrUnexpectedArgument{Tool: t.Name, Param: name}
			}
		}
	}

	return args, nil
}

func declares(params []tao.Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func describeType(p tao.Param) string {
	switch {
	case len(p.Enum) > 0:
		return fmt.Sprintf("one of %v", p.Enum)
	case p.Type == tao.TypeInteger:
		return "an integer"
	case p.Type == tao.TypeArray:
		return "an array"
	case p.Type == tao.TypeObject:
		return "an object"
	default:
		return "a " + string(p.Type)
	}
}

// coerce converts v to the canonical Go value for p.Type:
// string, int64, float64, bool, []any, or map[string]any.
func coerce(p tao.Param, v any) (any, error) {
	switch p.Type {
	case tao.TypeString:
		switch v.(type) {
		case string:
			return v, nil
		case bool, float64, float32, int, int64, int32, json.Number:
			return cast.ToStringE(v)
		}
		return nil, fmt.Errorf("not a scalar")

	case tao.TypeInteger:
		switch n := v.(type) {
		case bool:
			return nil, fmt.Errorf("booleans are not integers")
		case float64:
			if n != math.Trunc(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("%v has a fractional part", n)
			}
			// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
			if n < math.MinInt64 || n >= math.MaxInt64 {
				return nil, fmt.Errorf("%v overflows a 64-bit integer", n)
			}
			return int64(n), nil
		case float32:
			return coerce(p, float64(n))
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i, nil
			}
			f, err := cast.ToFloat64E(n)
			if err != nil {
				return nil, err
			}
			return coerce(p, f)
		case json.Number:
			return coerce(p, n.String())
		}
		return cast.ToInt64E(v)

	case tao.TypeNumber:
		if _, ok := v.(bool); ok {
			return nil, fmt.Errorf("booleans are not numbers")
		}
		return cast.ToFloat64E(v)

	case tao.TypeBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}
		return nil, fmt.Errorf("not a boolean")

	case tao.TypeArray:
		if arr, ok := v.([]any); ok {
			return arr, nil
		}
		if arr, ok := v.([]string); ok {
			out := make([]any, len(arr))
			for i, s := range arr {
				out[i] = s
			}
			return out, nil
		}
		return nil, fmt.Errorf("not an array")

	case tao.TypeObject:
		if obj, ok := v.(map[string]any); ok {
			return obj, nil
		}
		return nil, fmt.Errorf("not an object")
	}
	return nil, fmt.Errorf("unsupported parameter type %q", p.Type)
}

// decodeArgs converts bound arguments into the typed args struct T.
func decodeArgs[T any](args tao.Args) (T, error) {
	var out T
	data, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode arguments: %w", err)
	}
	return out, nil
}

func toPayload[R Output](r R) tao.Payload {
	switch v := any(r).(type) {
	case []string:
		return tao.List(v)
	case string:
		return tao.Text(v)
	}
	return tao.Payload{}
}

// Bind creates a Tool and Handler from a typed function.
// The parameter list is derived from struct tags on type T
// and the JSON schema is rendered from it at registration.
//
// Example:
//
//	type ReadArgs struct {
//	    Path string `json:"path" desc:"File to read" required:"true"`
//	}
//
//	t, h, err := tool.Bind("read_file", "Read a file",
//	    func(ctx context.Context, args ReadArgs) (string, error) {
//	        return readFile(args.Path)
//	    })
func Bind[T any, R Output](name, description string, fn TypedHandler[T, R]) (tao.Tool, Handler, error) {
	params, err := ParamsFor[T]()
	if err != nil {
		return tao.Tool{}, nil, err
	}

	t := tao.Tool{
		Name:        name,
		Description: description,
		Params:      params,
	}

	handler := func(ctx context.Context, args tao.Args) (tao.Payload, error) {
		typed, err := decodeArgs[T](args)
		if err != nil {
			return tao.Payload{}, err
		}
		r, err := fn(ctx, typed)
		if err != nil {
			return tao.Payload{}, err
		}
		return toPayload(r), nil
	}

	return t, handler, nil
}

// MustBind is like Bind but panics on error.
// This is useful for initialization code where errors should be fatal.
func MustBind[T any, R Output](name, description string, fn TypedHandler[T, R]) (tao.Tool, Handler) {
	t, h, err := Bind(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t, h
}
