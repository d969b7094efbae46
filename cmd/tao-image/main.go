// Command tao-image serves image generation and download tools over MCP stdio.
//
// Environment:
//
//	IMAGE_GEN_API_KEY   API key (falls back to OPENAI_API_KEY)
//	IMAGE_GEN_BASE_URL  OpenAI-compatible endpoint (default https://api.openai.com/v1)
//	IMAGE_GEN_MODEL     model or endpoint id (default dall-e-3)
package main

import (
	"github.com/SmiLeXio/Tao/config"
	"github.com/SmiLeXio/Tao/internal/runner"
	"github.com/SmiLeXio/Tao/tool"
)

func main() {
	runner.Main(runner.Server{
		Name:  "tao-image",
		Usage: "image generation tools over MCP stdio",
		Tools: func(cfg *config.Config) []tool.Registration {
			return tool.ImageTools(cfg.ImageOptions()...)
		},
	})
}
