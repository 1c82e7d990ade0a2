package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"
)

// New returns the application logger writing to out. Unknown levels fall
// back to warn.
func New(level string, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "fastrack",
		Level:  lvl,
		Output: out,
	})
}

// OpenFile appends log output to path, used while the TUI owns the terminal.
func OpenFile(path, level string) (hclog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(level, f), f, nil
}
