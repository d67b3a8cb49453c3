// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the given level ("debug", "info", "warn", "error").
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "tuidrill",
		ReportTimestamp: true,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OpenFile opens (appending) a log file for use while a TUI owns the terminal.
// The returned close func is safe to call once.
func OpenFile(path, level string) (*log.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger, err := New(f, level)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger, f.Close, nil
}
