package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner runs an external program and returns its standard output.
// A non-zero exit status must be reported as an error.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. Stderr is folded into the error on failure.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s is not installed or not on PATH: %w", name, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// DocumentToolOption configures document and media tools.
type DocumentToolOption func(*documentToolConfig)

type documentToolConfig struct {
	runner      CommandRunner
	pandocPath  string
	ffprobePath string
	fileOpts    []FileToolOption
}

// WithCommandRunner replaces the runner used for external binaries.
func WithCommandRunner(r CommandRunner) DocumentToolOption {
	return func(c *documentToolConfig) {
		c.runner = r
	}
}

// WithPandocPath sets the pandoc binary. Default is "pandoc".
func WithPandocPath(path string) DocumentToolOption {
	return func(c *documentToolConfig) {
		c.pandocPath = path
	}
}

// WithFFprobePath sets the ffprobe binary. Default is "ffprobe".
func WithFFprobePath(path string) DocumentToolOption {
	return func(c *documentToolConfig) {
		c.ffprobePath = path
	}
}

// WithDocumentFileOptions applies file options (base path, size limit) to document paths.
func WithDocumentFileOptions(opts ...FileToolOption) DocumentToolOption {
	return func(c *documentToolConfig) {
		c.fileOpts = opts
	}
}

func applyDocumentOpts(opts []DocumentToolOption) *documentToolConfig {
	cfg := &documentToolConfig{
		runner:      ExecRunner,
		pandocPath:  "pandoc",
		ffprobePath: "ffprobe",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

type convertDocumentArgs struct {
	InputPath    string `json:"input_path" desc:"Document to convert" required:"true"`
	OutputFormat string `json:"output_format" desc:"Target extension, e.g. docx, pdf, html, md" required:"true"`
}

// NewConvertDocumentTool creates a tool that converts documents with pandoc.
// The output is written next to the input with the extension replaced.
func NewConvertDocumentTool(opts ...DocumentToolOption) Registration {
	cfg := applyDocumentOpts(opts)
	files := applyFileOpts(cfg.fileOpts)

	return Func("convert_document", "Convert a document to another format with pandoc (e.g. .md to .docx)",
		func(ctx context.Context, args convertDocumentArgs) (string, error) {
			input, err := files.resolvePath(args.InputPath)
			if err != nil {
				return "", err
			}
			format := strings.TrimPrefix(strings.TrimSpace(args.OutputFormat), ".")
			if format == "" {
				return "", fmt.Errorf("output_format is empty")
			}

			output := strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
			if _, err := cfg.runner(ctx, cfg.pandocPath, input, "-o", output); err != nil {
				return "", fmt.Errorf("pandoc conversion failed (is pandoc installed?): %w", err)
			}
			return "converted: " + output, nil
		})
}

type videoInfoArgs struct {
	Path string `json:"path" desc:"Video or audio file to inspect" required:"true"`
}

// NewVideoInfoTool creates a tool that reports container and stream details via ffprobe.
func NewVideoInfoTool(opts ...DocumentToolOption) Registration {
	cfg := applyDocumentOpts(opts)
	files := applyFileOpts(cfg.fileOpts)

	return Func("video_info", "Get video file format and stream information (requires FFmpeg)",
		func(ctx context.Context, args videoInfoArgs) (string, error) {
			path, err := files.resolvePath(args.Path)
			if err != nil {
				return "", err
			}
			out, err := cfg.runner(ctx, cfg.ffprobePath, "-v", "error", "-show_format", "-show_streams", path)
			if err != nil {
				return "", fmt.Errorf("ffprobe failed (is FFmpeg installed?): %w", err)
			}
			return string(out), nil
		})
}

// DocumentTools returns the document and media inspection tools.
func DocumentTools(opts ...DocumentToolOption) []Registration {
	return []Registration{
		NewExcelTool(opts...),
		NewSaveExcelTool(opts...),
		NewConvertDocumentTool(opts...),
		NewVideoInfoTool(opts...),
		NewParseXmindTool(opts...),
		NewSequentialThinkingTool(),
	}
}
