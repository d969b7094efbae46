package tool

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileToolOption configures file tools.
type FileToolOption func(*fileToolConfig)

type fileToolConfig struct {
	basePath    string
	maxFileSize int64
}

// WithBasePath confines file operations to a directory tree.
// Relative paths resolve against it and paths escaping it are rejected.
func WithBasePath(path string) FileToolOption {
	return func(c *fileToolConfig) {
		c.basePath = path
	}
}

// WithMaxFileSize sets the maximum file size for read/write operations.
// Default is 10MB.
func WithMaxFileSize(bytes int64) FileToolOption {
	return func(c *fileToolConfig) {
		c.maxFileSize = bytes
	}
}

func applyFileOpts(opts []FileToolOption) *fileToolConfig {
	cfg := &fileToolConfig{
		maxFileSize: 10 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// resolvePath returns the absolute form of path.
func (c *fileToolConfig) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}

	if c.basePath == "" {
		return filepath.Abs(path)
	}

	base, err := filepath.Abs(c.basePath)
	if err != nil {
		return "", err
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside base path %q", path, base)
	}
	return full, nil
}

type readFileArgs struct {
	Path string `json:"path" desc:"Path to the file to read" required:"true"`
}

type writeFileArgs struct {
	Path    string `json:"path" desc:"Path to the file to write; missing parent directories are created" required:"true"`
	Content string `json:"content" desc:"Content to write to the file" required:"true"`
}

type listDirArgs struct {
	Path string `json:"path" desc:"Directory path to list" required:"true"`
}

type searchFilesArgs struct {
	Directory string `json:"directory" desc:"Directory to search recursively" required:"true"`
	Pattern   string `json:"pattern" desc:"Glob matched against file names at any depth (e.g. *.py)" required:"true"`
}

// NewReadFileTool creates a tool for reading file contents as text.
func NewReadFileTool(opts ...FileToolOption) Registration {
	cfg := applyFileOpts(opts)

	return Func("read_file", "Read the contents of a file",
		func(ctx context.Context, args readFileArgs) (string, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return "", err
			}

			info, err := os.Stat(path)
			if err != nil {
				return "", fmt.Errorf("read failed: %w", err)
			}
			if info.IsDir() {
				return "", fmt.Errorf("read failed: %s is a directory", path)
			}
			if info.Size() > cfg.maxFileSize {
				return "", fmt.Errorf("file size %d exceeds maximum %d", info.Size(), cfg.maxFileSize)
			}

			f, err := os.Open(path)
			if err != nil {
				return "", fmt.Errorf("read failed: %w", err)
			}
			defer f.Close()

			content, err := io.ReadAll(io.LimitReader(f, cfg.maxFileSize))
			if err != nil {
				return "", fmt.Errorf("read failed: %w", err)
			}
			return string(content), nil
		})
}

// NewWriteFileTool creates a tool for writing file contents.
// Parent directories are created as needed and existing files are overwritten.
func NewWriteFileTool(opts ...FileToolOption) Registration {
	cfg := applyFileOpts(opts)

	return Func("write_file", "Write content to a file",
		func(ctx context.Context, args writeFileArgs) (string, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return "", err
			}

			if int64(len(args.Content)) > cfg.maxFileSize {
				return "", fmt.Errorf("content size %d exceeds maximum %d", len(args.Content), cfg.maxFileSize)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return "", fmt.Errorf("write failed: %w", err)
			}
			if err := os.WriteFile(path, []byte(args.Content), 0644); err != nil {
				return "", fmt.Errorf("write failed: %w", err)
			}

			return fmt.Sprintf("wrote %d bytes to %s", len(args.Content), path), nil
		})
}

// NewListDirTool creates a tool that lists the entry names of a directory.
// Names are sorted so repeated calls on an unchanged directory agree.
func NewListDirTool(opts ...FileToolOption) Registration {
	cfg := applyFileOpts(opts)

	return Func("list_directory", "List all files and folders in a directory",
		func(ctx context.Context, args listDirArgs) ([]string, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return nil, err
			}

			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("list failed: %w", err)
			}

			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			return names, nil
		})
}

// NewSearchFilesTool creates a tool that finds files whose names match a glob
// anywhere below a directory. Matching paths are returned absolute and sorted.
func NewSearchFilesTool(opts ...FileToolOption) Registration {
	cfg := applyFileOpts(opts)

	return Func("search_files", "Search a directory recursively for files matching a pattern (e.g. *.py)",
		func(ctx context.Context, args searchFilesArgs) ([]string, error) {
			root, err := cfg.resolvePath(args.Directory)
			if err != nil {
				return nil, err
			}
			if _, err := filepath.Match(args.Pattern, ""); err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", args.Pattern, err)
			}

			var matches []string
			err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					if p == root {
						return err
					}
					return nil // skip entries we can't access
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if p == root {
					return nil
				}
				if ok, _ := filepath.Match(args.Pattern, d.Name()); ok {
					matches = append(matches, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("search failed: %w", err)
			}

			sort.Strings(matches)
			if matches == nil {
				matches = []string{}
			}
			return matches, nil
		})
}

// FileTools returns read, write, list directory, and search tools.
func FileTools(opts ...FileToolOption) []Registration {
	return []Registration{
		NewReadFileTool(opts...),
		NewWriteFileTool(opts...),
		NewListDirTool(opts...),
		NewSearchFilesTool(opts...),
	}
}
