package schema

import (
	"encoding/json"
	"testing"

	tao "github.com/SmiLeXio/Tao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForParams(t *testing.T) {
	t.Run("renders properties and required list", func(t *testing.T) {
		raw, err := ForParams([]tao.Param{
			{Name: "path", Type: tao.TypeString, Description: "File path", Required: true},
			{Name: "n", Type: tao.TypeInteger, Default: 1},
			{Name: "tags", Type: tao.TypeArray},
		})
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "File path"},
				"n": {"type": "integer", "default": 1},
				"tags": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["path"]
		}`, string(raw))
	})

	t.Run("empty params render an empty object", func(t *testing.T) {
		raw, err := ForParams(nil)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "object", got["type"])
		assert.NotContains(t, got, "required")
	})

	t.Run("array items type is kept", func(t *testing.T) {
		raw, err := ForParams([]tao.Param{{Name: "rows", Type: tao.TypeArray, Items: tao.TypeObject}})
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"items":{"type":"object"}`)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  []tao.Param
		wantErr error
	}{
		{
			name:    "duplicate names",
			params:  []tao.Param{{Name: "a", Type: tao.TypeString}, {Name: "a", Type: tao.TypeInteger}},
			wantErr: ErrDuplicateParam,
		},
		{
			name:    "unknown type",
			params:  []tao.Param{{Name: "a", Type: "date"}},
			wantErr: ErrUnknownType,
		},
		{
			name:    "required with default",
			params:  []tao.Param{{Name: "a", Type: tao.TypeString, Required: true, Default: "x"}},
			wantErr: ErrBadDefault,
		},
		{
			name:    "default outside enum",
			params:  []tao.Param{{Name: "a", Type: tao.TypeString, Enum: []string{"x", "y"}, Default: "z"}},
			wantErr: ErrBadDefault,
		},
		{
			name:   "valid",
			params: []tao.Param{{Name: "a", Type: tao.TypeString, Enum: []string{"x"}, Default: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.params)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestMustForParamsPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustForParams([]tao.Param{{Name: "x", Type: "nope"}})
	})
}
