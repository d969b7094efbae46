// Command tao-fs serves filesystem tools over MCP stdio.
//
// Paths are resolved against TAO_FS_ROOT when it is set, otherwise against
// the working directory.
//
// Usage:
//
//	tao-fs [--log-level debug] [--metrics-addr :9101]
package main

import (
	"github.com/SmiLeXio/Tao/config"
	"github.com/SmiLeXio/Tao/internal/runner"
	"github.com/SmiLeXio/Tao/tool"
)

func main() {
	runner.Main(runner.Server{
		Name:         "tao-fs",
		Usage:        "filesystem tools over MCP stdio",
		Instructions: "Read, write, list, and search files. Relative paths resolve against the server's root directory.",
		Tools: func(cfg *config.Config) []tool.Registration {
			return tool.FileTools(cfg.FileOptions()...)
		},
	})
}
