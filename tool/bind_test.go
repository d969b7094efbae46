package tool

import (
	"context"
	"testing"

	tao "github.com/SmiLeXio/Tao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramTool(params ...tao.Param) tao.Tool {
	return tao.Tool{Name: "bound", Params: params}
}

func TestBindArgsCoercion(t *testing.T) {
	tests := []struct {
		name    string
		typ     tao.ParamType
		in      any
		want    any
		wantErr bool
	}{
		{"string passthrough", tao.TypeString, "hi", "hi", false},
		{"string from number", tao.TypeString, float64(42), "42", false},
		{"string from bool", tao.TypeString, true, "true", false},
		{"string rejects array", tao.TypeString, []any{"a"}, nil, true},
		{"string rejects object", tao.TypeString, map[string]any{}, nil, true},

		{"integer from float", tao.TypeInteger, float64(7), int64(7), false},
		{"integer from integral float", tao.TypeInteger, 3.0, int64(3), false},
		{"integer from numeric string", tao.TypeInteger, "42", int64(42), false},
		{"integer rejects fraction", tao.TypeInteger, 1.5, nil, true},
		{"integer rejects fractional string", tao.TypeInteger, "1.5", nil, true},
		{"integer rejects bool", tao.TypeInteger, true, nil, true},
		{"integer rejects word", tao.TypeInteger, "seven", nil, true},
		{"integer rejects overflow", tao.TypeInteger, 1e20, nil, true},
		{"integer rejects overflowing string", tao.TypeInteger, "1e30", nil, true},
		{"integer rejects just past max", tao.TypeInteger, 9.3e18, nil, true},
		{"integer rejects negative overflow", tao.TypeInteger, -1e19, nil, true},
		{"integer accepts large in range", tao.TypeInteger, 9e18, int64(9e18), false},

		{"number passthrough", tao.TypeNumber, 1.25, 1.25, false},
		{"number from string", tao.TypeNumber, "2.5", 2.5, false},
		{"number rejects bool", tao.TypeNumber, false, nil, true},
		{"number rejects word", tao.TypeNumber, "pi", nil, true},

		{"boolean passthrough", tao.TypeBoolean, true, true, false},
		{"boolean from string", tao.TypeBoolean, "false", false, false},
		{"boolean rejects number", tao.TypeBoolean, float64(1), nil, true},
		{"boolean rejects word", tao.TypeBoolean, "yes please", nil, true},

		{"array passthrough", tao.TypeArray, []any{"a", 1.0}, []any{"a", 1.0}, false},
		{"array rejects string", tao.TypeArray, "a,b", nil, true},

		{"object passthrough", tao.TypeObject, map[string]any{"k": "v"}, map[string]any{"k": "v"}, false},
		{"object rejects array", tao.TypeObject, []any{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := paramTool(tao.Param{Name: "v", Type: tt.typ, Required: true})
			args, err := BindArgs(tool, map[string]any{"v": tt.in}, IgnoreUnknown)
			if tt.wantErr {
				var typeErr *ErrArgumentType
				require.ErrorAs(t, err, &typeErr)
				assert.Equal(t, "v", typeErr.Param)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, args["v"])
		})
	}
}

func TestBindArgs(t *testing.T) {
	t.Run("missing required argument", func(t *testing.T) {
		tool := paramTool(tao.Param{Name: "path", Type: tao.TypeString, Required: true})
		_, err := BindArgs(tool, map[string]any{}, IgnoreUnknown)

		var missing *ErrMissingArgument
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "path", missing.Param)
	})

	t.Run("null counts as missing", func(t *testing.T) {
		tool := paramTool(tao.Param{Name: "path", Type: tao.TypeString, Required: true})
		_, err := BindArgs(tool, map[string]any{"path": nil}, IgnoreUnknown)

		var missing *ErrMissingArgument
		assert.ErrorAs(t, err, &missing)
	})

	t.Run("applies defaults for absent optional params", func(t *testing.T) {
		tool := paramTool(
			tao.Param{Name: "size", Type: tao.TypeString, Default: "1024x1024"},
			tao.Param{Name: "n", Type: tao.TypeInteger, Default: int64(1)},
			tao.Param{Name: "note", Type: tao.TypeString},
		)
		args, err := BindArgs(tool, nil, IgnoreUnknown)
		require.NoError(t, err)
		assert.Equal(t, tao.Args{"size": "1024x1024", "n": int64(1)}, args)
	})

	t.Run("enum violation", func(t *testing.T) {
		tool := paramTool(tao.Param{Name: "mode", Type: tao.TypeString, Enum: []string{"text", "html"}})
		_, err := BindArgs(tool, map[string]any{"mode": "pdf"}, IgnoreUnknown)

		var typeErr *ErrArgumentType
		require.ErrorAs(t, err, &typeErr)
		assert.Contains(t, err.Error(), `"pdf" is not allowed`)
	})

	t.Run("unknown arguments ignored by default", func(t *testing.T) {
		tool := paramTool(tao.Param{Name: "q", Type: tao.TypeString})
		args, err := BindArgs(tool, map[string]any{"q": "x", "extra": 1.0}, IgnoreUnknown)
		require.NoError(t, err)
		assert.Equal(t, tao.Args{"q": "x"}, args)
	})

	t.Run("unknown arguments rejected on request", func(t *testing.T) {
		tool := paramTool(tao.Param{Name: "q", Type: tao.TypeString})
		_, err := BindArgs(tool, map[string]any{"q": "x", "extra": 1.0}, RejectUnknown)

		var unexpected *ErrUnexpectedArgument
		require.ErrorAs(t, err, &unexpected)
		assert.Equal(t, "extra", unexpected.Param)
	})
}

type reflectArgs struct {
	Path    string   `json:"path" desc:"A path" required:"true"`
	Count   int      `json:"count" default:"3"`
	Ratio   float64  `json:"ratio"`
	Verbose bool     `json:"verbose" default:"true"`
	Mode    string   `json:"mode" enum:"a,b" default:"a"`
	Tags    []string `json:"tags"`
	Skip    string   `json:"-"`
	hidden  string
}

func TestParamsFor(t *testing.T) {
	t.Run("maps struct fields to params", func(t *testing.T) {
		params, err := ParamsFor[reflectArgs]()
		require.NoError(t, err)

		assert.Equal(t, []tao.Param{
			{Name: "path", Type: tao.TypeString, Description: "A path", Required: true},
			{Name: "count", Type: tao.TypeInteger, Default: int64(3)},
			{Name: "ratio", Type: tao.TypeNumber},
			{Name: "verbose", Type: tao.TypeBoolean, Default: true},
			{Name: "mode", Type: tao.TypeString, Enum: []string{"a", "b"}, Default: "a"},
			{Name: "tags", Type: tao.TypeArray, Items: tao.TypeString},
		}, params)
	})

	t.Run("rejects non-struct", func(t *testing.T) {
		_, err := ParamsFor[string]()
		assert.Error(t, err)
	})

	t.Run("rejects bad default", func(t *testing.T) {
		type bad struct {
			N int `json:"n" default:"many"`
		}
		_, err := ParamsFor[bad]()
		assert.Error(t, err)
	})
}

func TestBind(t *testing.T) {
	t.Run("decodes bound args into the typed struct", func(t *testing.T) {
		var got reflectArgs
		tl, h, err := Bind("reflect", "Reflect", func(ctx context.Context, args reflectArgs) (string, error) {
			got = args
			return "ok", nil
		})
		require.NoError(t, err)

		args, err := BindArgs(tl, map[string]any{"path": "/x", "tags": []any{"a", "b"}}, IgnoreUnknown)
		require.NoError(t, err)

		payload, err := h(context.Background(), args)
		require.NoError(t, err)
		assert.Equal(t, "ok", payload.Text())
		assert.Equal(t, "/x", got.Path)
		assert.Equal(t, 3, got.Count)
		assert.True(t, got.Verbose)
		assert.Equal(t, "a", got.Mode)
		assert.Equal(t, []string{"a", "b"}, got.Tags)
	})

	t.Run("list results become list payloads", func(t *testing.T) {
		_, h := MustBind("list", "List", func(ctx context.Context, args testArgs) ([]string, error) {
			return []string{"x", "y"}, nil
		})

		payload, err := h(context.Background(), tao.Args{"query": "q"})
		require.NoError(t, err)
		assert.True(t, payload.IsList())
		assert.Equal(t, []string{"x", "y"}, payload.Strings())
	})
}
