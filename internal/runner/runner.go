// Package runner holds the process wiring shared by the tool server binaries:
// flags, configuration, logging, metrics, signal handling, and the stdio loop.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SmiLeXio/Tao/config"
	"github.com/SmiLeXio/Tao/mcp"
	"github.com/SmiLeXio/Tao/tool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

// Version is reported to MCP clients and by --version.
var Version = "1.0.0"

// Server describes one tool server binary.
type Server struct {
	// Name is the binary name, also used as the MCP server name.
	Name  string
	Usage string
	// Instructions is returned to clients from initialize.
	Instructions string
	// Tools builds the server's registrations from resolved configuration.
	Tools func(cfg *config.Config) []tool.Registration
}

// Main runs the server with the process arguments and exits on failure.
func Main(s Server) {
	if err := s.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", s.Name, err)
		os.Exit(1)
	}
}

// App returns the command-line application for the server. Protocol messages
// are read from the app's Reader and written to its Writer; logs go to ErrWriter.
func (s Server) App() *cli.App {
	return &cli.App{
		Name:    s.Name,
		Usage:   s.Usage,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error (overrides TAO_LOG_LEVEL)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format: text, json (overrides TAO_LOG_FORMAT)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve /metrics and /healthz on this address (overrides TAO_METRICS_ADDR)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-invocation deadline, 0 to disable (overrides TAO_TOOL_TIMEOUT)",
			},
			&cli.BoolFlag{
				Name:  "reject-unknown-args",
				Usage: "fail calls that pass arguments the tool does not declare",
			},
		},
		Action: s.run,
	}
}

func (s Server) run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(c, cfg); err != nil {
		return err
	}

	logger, err := NewLogger(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	registry := tool.NewRegistry()
	if err := tool.RegisterAll(registry, s.Tools(cfg)); err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dispatchOpts := []tool.DispatcherOption{
		tool.WithTimeout(cfg.ToolTimeout),
		tool.WithMetrics(tool.NewMetrics(promReg, s.Name)),
	}
	if c.Bool("reject-unknown-args") {
		dispatchOpts = append(dispatchOpts, tool.WithUnknownArguments(tool.RejectUnknown))
	}

	session := mcp.NewSession(registry,
		mcp.WithName(s.Name),
		mcp.WithVersion(Version),
		mcp.WithInstructions(s.Instructions),
		mcp.WithLogger(logger),
		mcp.WithDispatcherOptions(dispatchOpts...),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		shutdown, err := StartMetrics(cfg.MetricsAddr, promReg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	logger.Info("starting",
		"server", s.Name,
		"version", Version,
		"tools", registry.Names(),
		"timeout", cfg.ToolTimeout,
	)

	err = mcp.Serve(ctx, session, c.App.Reader, c.App.Writer)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// applyFlags overrides environment configuration with flags set on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}
	if c.IsSet("timeout") {
		cfg.ToolTimeout = c.Duration("timeout")
	}
	return cfg.Validate()
}
