// Command tao-docs serves document and media tools over MCP stdio:
// spreadsheets, pandoc conversion, ffprobe metadata, XMind outlines, and
// sequential thinking.
//
// convert_document and video_info need pandoc and ffprobe on PATH, or set
// TAO_PANDOC_PATH and TAO_FFPROBE_PATH.
package main

import (
	"github.com/SmiLeXio/Tao/config"
	"github.com/SmiLeXio/Tao/internal/runner"
	"github.com/SmiLeXio/Tao/tool"
)

func main() {
	runner.Main(runner.Server{
		Name:  "tao-docs",
		Usage: "document and media tools over MCP stdio",
		Tools: func(cfg *config.Config) []tool.Registration {
			return tool.DocumentTools(cfg.DocumentOptions()...)
		},
	})
}
