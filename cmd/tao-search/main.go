// Command tao-search serves internet search over MCP stdio using the Tavily API.
// Set TAVILY_API_KEY; without it every search fails with a message naming the variable.
package main

import (
	"github.com/SmiLeXio/Tao/config"
	"github.com/SmiLeXio/Tao/internal/runner"
	"github.com/SmiLeXio/Tao/tool"
)

func main() {
	runner.Main(runner.Server{
		Name:  "tao-search",
		Usage: "internet search over MCP stdio",
		Tools: func(cfg *config.Config) []tool.Registration {
			return tool.SearchTools(cfg.SearchOptions()...)
		},
	})
}
