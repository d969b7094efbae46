// Command taoctl starts a tool server and lists or calls its tools.
//
// Usage:
//
//	taoctl list -- tao-fs
//	taoctl call --args '{"path":"."}' list_directory -- tao-fs
//	taoctl call --env TAVILY_API_KEY=tvly-... --args '{"query":"go"}' search_internet -- tao-search
//
// Everything after "--" is the server command and its arguments.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tao "github.com/SmiLeXio/Tao"
	"github.com/SmiLeXio/Tao/mcp"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "taoctl: %v\n", err)
		os.Exit(1)
	}
}

// serverFlags are shared by every subcommand that starts a server.
func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "env",
			Usage: "extra KEY=VALUE environment for the server (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 5 * time.Minute,
			Usage: "overall deadline for starting the server and the request",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "taoctl",
		Usage: "list and call tools on a Tao tool server",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list the server's tools",
				ArgsUsage: "-- <server command> [args...]",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print tool definitions as JSON"},
				}, serverFlags()...),
				Action: listTools,
			},
			{
				Name:      "call",
				Usage:     "invoke one tool and print its result",
				ArgsUsage: "<tool> -- <server command> [args...]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "args", Value: "{}", Usage: "tool arguments as a JSON object"},
				}, serverFlags()...),
				Action: callTool,
			},
		},
	}
}

func listTools(c *cli.Context) error {
	command, err := serverCommand(c.Args().Slice())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	client, err := mcp.Dial(ctx, command[0], c.StringSlice("env"), command[1:]...)
	if err != nil {
		return err
	}
	defer client.Close()

	return printTools(c.App.Writer, client.Tools(), c.Bool("json"))
}

func callTool(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 || args[0] == "--" {
		return errors.New("missing tool name")
	}
	name := args[0]

	command, err := serverCommand(args[1:])
	if err != nil {
		return err
	}

	var arguments map[string]any
	if err := json.Unmarshal([]byte(c.String("args")), &arguments); err != nil {
		return fmt.Errorf("--args must be a JSON object: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	client, err := mcp.Dial(ctx, command[0], c.StringSlice("env"), command[1:]...)
	if err != nil {
		return err
	}
	defer client.Close()

	res := client.Call(ctx, tao.ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: arguments,
	})
	if res.IsError {
		return cli.Exit(fmt.Sprintf("%s failed: %s", name, res.Error), 2)
	}

	for _, item := range res.Payload.Strings() {
		fmt.Fprintln(c.App.Writer, item)
	}
	return nil
}

// serverCommand drops the "--" separator and returns the server argv.
func serverCommand(args []string) ([]string, error) {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		return nil, errors.New("missing server command after --")
	}
	return args, nil
}

func printTools(w io.Writer, tools []tao.Tool, asJSON bool) error {
	if asJSON {
		type toolJSON struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"inputSchema,omitempty"`
		}
		out := make([]toolJSON, len(tools))
		for i, t := range tools {
			out[i] = toolJSON{Name: t.Name, Description: t.Description, InputSchema: t.Parameters}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, t := range tools {
		fmt.Fprintf(w, "%-20s %s\n", t.Name, t.Description)
	}
	return nil
}
