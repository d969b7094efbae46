package runner

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/SmiLeXio/Tao/config"
)

// NewLogger builds the process logger. Tool servers must log to stderr
// because stdout carries protocol messages.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
