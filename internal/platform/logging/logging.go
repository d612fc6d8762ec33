// Package logging builds the process logger shared by every module.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
)

type Options struct {
	Name  string
	Level string
	// File receives log output when set; otherwise Output (or stderr) is used.
	File   string
	Output io.Writer
	JSON   bool
}

// New returns a logger and a close function for its output file.
func New(opts Options) (hclog.Logger, func() error, error) {
	level := hclog.LevelFromString(strings.TrimSpace(opts.Level))
	if level == hclog.NoLevel {
		if opts.Level != "" {
			return nil, nil, fmt.Errorf("unknown log level %q", opts.Level)
		}
		level = hclog.Info
	}

	out := opts.Output
	closer := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = f.Close
	}
	if out == nil {
		out = os.Stderr
	}

	name := opts.Name
	if name == "" {
		name = "soundblanket"
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     out,
		JSONFormat: opts.JSON,
	})
	return logger, closer, nil
}
