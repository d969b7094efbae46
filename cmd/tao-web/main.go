// Command tao-web serves web page retrieval over MCP stdio.
//
// TAO_WEB_ALLOWED_HOSTS and TAO_WEB_BLOCKED_HOSTS take comma-separated host
// suffixes that restrict which pages may be fetched.
package main

import (
	"github.com/SmiLeXio/Tao/config"
	"github.com/SmiLeXio/Tao/internal/runner"
	"github.com/SmiLeXio/Tao/tool"
)

func main() {
	runner.Main(runner.Server{
		Name:  "tao-web",
		Usage: "web page content over MCP stdio",
		Tools: func(cfg *config.Config) []tool.Registration {
			return tool.WebTools(cfg.WebOptions()...)
		},
	})
}
