package main

import (
	"bytes"
	"encoding/json"
	"testing"

	tao "github.com/SmiLeXio/Tao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerCommand(t *testing.T) {
	cmd, err := serverCommand([]string{"--", "tao-fs", "--log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tao-fs", "--log-level", "debug"}, cmd)

	cmd, err = serverCommand([]string{"tao-web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tao-web"}, cmd)

	_, err = serverCommand([]string{"--"})
	assert.Error(t, err)
}

func TestPrintTools(t *testing.T) {
	tools := []tao.Tool{
		{Name: "read_file", Description: "Read a file", Parameters: json.RawMessage(`{"type":"object"}`)},
		{Name: "write_file", Description: "Write a file"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printTools(&buf, tools, false))
		assert.Contains(t, buf.String(), "read_file")
		assert.Contains(t, buf.String(), "Write a file")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printTools(&buf, tools, true))

		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "read_file", got[0]["name"])
		assert.Equal(t, map[string]any{"type": "object"}, got[0]["inputSchema"])
		assert.NotContains(t, got[1], "inputSchema")
	})
}

func TestCallRequiresToolName(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"taoctl", "call"})
	assert.ErrorContains(t, err, "missing tool name")
}
