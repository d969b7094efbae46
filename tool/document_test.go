package tool

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeRunner records invocations and returns canned output.
type fakeRunner struct {
	name string
	args []string
	out  []byte
	err  error
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	return f.out, f.err
}

func docDispatcher(t *testing.T, opts ...DocumentToolOption) *Dispatcher {
	t.Helper()
	registry := NewRegistry().Add(DocumentTools(opts...)...)
	registry.Seal()
	return NewDispatcher(registry)
}

func TestConvertDocument(t *testing.T) {
	input := filepath.Join(t.TempDir(), "report.md")

	t.Run("runs pandoc next to the input", func(t *testing.T) {
		runner := &fakeRunner{}
		d := docDispatcher(t, WithCommandRunner(runner.run), WithPandocPath("/opt/pandoc"))

		res := call(t, d, "convert_document", map[string]any{"input_path": input, "output_format": ".docx"})

		require.False(t, res.IsError, res.Error)
		want := strings.TrimSuffix(input, ".md") + ".docx"
		assert.Equal(t, "converted: "+want, res.Payload.Text())
		assert.Equal(t, "/opt/pandoc", runner.name)
		assert.Equal(t, []string{input, "-o", want}, runner.args)
	})

	t.Run("reports runner failure", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("pandoc: exit status 1: unknown format")}
		d := docDispatcher(t, WithCommandRunner(runner.run))

		res := call(t, d, "convert_document", map[string]any{"input_path": input, "output_format": "xyz"})

		assert.True(t, res.IsError)
		assert.Contains(t, res.Error, "unknown format")
	})
}

func TestVideoInfo(t *testing.T) {
	runner := &fakeRunner{out: []byte("[FORMAT]\nduration=1.0\n[/FORMAT]\n")}
	d := docDispatcher(t, WithCommandRunner(runner.run))
	path := filepath.Join(t.TempDir(), "clip.mp4")

	res := call(t, d, "video_info", map[string]any{"path": path})

	require.False(t, res.IsError, res.Error)
	assert.Contains(t, res.Payload.Text(), "duration=1.0")
	assert.Equal(t, "ffprobe", runner.name)
	assert.Equal(t, []string{"-v", "error", "-show_format", "-show_streams", path}, runner.args)
}

func TestExecRunner(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		_, err := ExecRunner(context.Background(), "tao-definitely-not-installed")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not installed")
	})
}

func TestExcelTools(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "people.xlsx")
	d := docDispatcher(t)

	res := call(t, d, "save_to_excel", map[string]any{
		"path": path,
		"data": []any{
			map[string]any{"name": "Ada", "age": 36.0},
			map[string]any{"name": "Linus", "city": "Helsinki"},
		},
	})
	require.False(t, res.IsError, res.Error)
	assert.Equal(t, "excel file saved to: "+path, res.Payload.Text())

	t.Run("written workbook has sorted header", func(t *testing.T) {
		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(f.GetSheetName(0))
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"age", "city", "name"}, rows[0])
		assert.Equal(t, "Ada", rows[1][2])
		assert.Equal(t, "Helsinki", rows[2][1])
	})

	t.Run("info", func(t *testing.T) {
		res := call(t, d, "process_excel", map[string]any{"path": path, "action": "info"})

		require.False(t, res.IsError, res.Error)
		assert.Equal(t, "sheet: Sheet1, columns: [age, city, name], rows: 2", res.Payload.Text())
	})

	t.Run("read is the default action", func(t *testing.T) {
		res := call(t, d, "process_excel", map[string]any{"path": path})

		require.False(t, res.IsError, res.Error)
		assert.Contains(t, res.Payload.Text(), "Linus")
		assert.Len(t, strings.Split(res.Payload.Text(), "\n"), 3)
	})

	t.Run("unknown action", func(t *testing.T) {
		res := call(t, d, "process_excel", map[string]any{"path": path, "action": "delete"})
		assert.True(t, res.IsError)
	})

	t.Run("not a workbook", func(t *testing.T) {
		bogus := filepath.Join(dir, "bogus.xlsx")
		require.NoError(t, os.WriteFile(bogus, []byte("nope"), 0644))

		res := call(t, d, "process_excel", map[string]any{"path": bogus})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Error, "excel processing failed")
	})
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestParseXmind(t *testing.T) {
	dir := t.TempDir()

	t.Run("zen content.json", func(t *testing.T) {
		path := filepath.Join(dir, "zen.xmind")
		writeZip(t, path, map[string]string{
			"content.json": `[{"title":"Sheet 1","rootTopic":{"title":"Root",
				"notes":{"plain":{"content":"root note"}},
				"children":{"attached":[{"title":"A","labels":["x"]},{"title":"B",
				"children":{"attached":[{"title":"B1"}]}}]}}}]`,
			"metadata.json": `{}`,
		})

		sheets, err := ParseXmind(path, 1<<20)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		root := sheets[0].Topic
		assert.Equal(t, "Sheet 1", sheets[0].Title)
		assert.Equal(t, "Root", root.Title)
		assert.Equal(t, "root note", root.Note)
		require.Len(t, root.Topics, 2)
		assert.Equal(t, []string{"x"}, root.Topics[0].Labels)
		assert.Equal(t, "B1", root.Topics[1].Topics[0].Title)
	})

	t.Run("legacy content.xml", func(t *testing.T) {
		path := filepath.Join(dir, "legacy.xmind")
		writeZip(t, path, map[string]string{
			"content.xml": `<?xml version="1.0" encoding="UTF-8"?>
<xmap-content xmlns="urn:xmind:xmap:xmlns:content:2.0">
  <sheet><title>Map</title>
    <topic><title>Root</title>
      <children>
        <topics type="attached"><topic><title>Child</title></topic></topics>
        <topics type="detached"><topic><title>Floating</title></topic></topics>
      </children>
    </topic>
  </sheet>
</xmap-content>`,
		})

		sheets, err := ParseXmind(path, 1<<20)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, "Map", sheets[0].Title)
		require.Len(t, sheets[0].Topic.Topics, 1)
		assert.Equal(t, "Child", sheets[0].Topic.Topics[0].Title)
	})

	t.Run("archive without content", func(t *testing.T) {
		path := filepath.Join(dir, "empty.xmind")
		writeZip(t, path, map[string]string{"manifest.json": "{}"})

		_, err := ParseXmind(path, 1<<20)
		assert.Error(t, err)
	})

	t.Run("oversized content is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bomb.xmind")
		writeZip(t, path, map[string]string{
			"content.json": `[{"title":"` + strings.Repeat("a", 4096) + `"}]`,
		})

		_, err := ParseXmind(path, 1024)
		assert.ErrorContains(t, err, "content.json is larger than 1024 bytes")

		d := docDispatcher(t, WithDocumentFileOptions(WithMaxFileSize(1024)))
		res := call(t, d, "parse_xmind", map[string]any{"path": path})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Error, "larger than 1024 bytes")
	})

	t.Run("tool returns JSON", func(t *testing.T) {
		d := docDispatcher(t)
		res := call(t, d, "parse_xmind", map[string]any{"path": filepath.Join(dir, "zen.xmind")})
		require.False(t, res.IsError, res.Error)

		var sheets []MindmapSheet
		require.NoError(t, json.Unmarshal([]byte(res.Payload.Text()), &sheets))
		assert.Equal(t, "Root", sheets[0].Topic.Title)
	})
}

func TestSequentialThinking(t *testing.T) {
	d := docDispatcher(t)

	t.Run("echoes the numbered thought", func(t *testing.T) {
		res := call(t, d, "sequential_thinking", map[string]any{"thought": "list files", "step": 1.0, "total_steps": "3"})

		require.False(t, res.IsError, res.Error)
		assert.Equal(t, "[step 1/3]: list files", res.Payload.Text())
	})

	t.Run("rejects non-positive steps", func(t *testing.T) {
		res := call(t, d, "sequential_thinking", map[string]any{"thought": "x", "step": 0.0, "total_steps": 1.0})
		assert.True(t, res.IsError)
	})
}
