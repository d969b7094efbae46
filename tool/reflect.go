package tool

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	tao "github.com/SmiLeXio/Tao"
)

// ParamsFor derives an ordered parameter list from the struct type T.
//
// Supported struct tags:
//
//	json:"name"        - Parameter name (fields tagged "-" are skipped)
//	desc:"text"        - Description for the caller
//	required:"true"    - Mark the parameter as required
//	default:"value"    - Default applied when the argument is absent
//	enum:"a,b,c"       - Allowed string values
//
// Field types map to parameter types: strings to string, integer kinds to
// integer, floats to number, bool to boolean, slices to array, and structs
// and maps to object. Pointer fields use their element type.
func ParamsFor[T any]() ([]tao.Param, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("tool: params type must be a struct, got interface")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool: params type must be a struct, got %s", t.Kind())
	}

	params := make([]tao.Param, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		p := tao.Param{
			Name:        name,
			Type:        paramType(field.Type),
			Description: field.Tag.Get("desc"),
			Required:    field.Tag.Get("required") == "true",
		}
		if p.Type == tao.TypeArray {
			p.Items = paramType(deref(field.Type).Elem())
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			p.Enum = strings.Split(enum, ",")
		}
		if def, ok := field.Tag.Lookup("default"); ok {
			v, err := parseDefault(p.Type, def)
			if err != nil {
				return nil, fmt.Errorf("tool: field %s: %w", field.Name, err)
			}
			p.Default = v
		}
		params = append(params, p)
	}
	return params, nil
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func paramType(t reflect.Type) tao.ParamType {
	switch deref(t).Kind() {
	case reflect.String:
		return tao.TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return tao.TypeInteger
	case reflect.Float32, reflect.Float64:
		return tao.TypeNumber
	case reflect.Bool:
		return tao.TypeBoolean
	case reflect.Slice, reflect.Array:
		return tao.TypeArray
	case reflect.Struct, reflect.Map, reflect.Interface:
		return tao.TypeObject
	default:
		return tao.TypeString
	}
}

func parseDefault(pt tao.ParamType, raw string) (any, error) {
	switch pt {
	case tao.TypeString:
		return raw, nil
	case tao.TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not an integer", raw)
		}
		return n, nil
	case tao.TypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a number", raw)
		}
		return f, nil
	case tao.TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a boolean", raw)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("defaults are not supported for %s parameters", pt)
	}
}
