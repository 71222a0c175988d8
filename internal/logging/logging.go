// Package logging configures the charm logger used by the wiggle command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Setup builds a logger at the given level writing to stderr, or appending
// to path when it is not empty. The returned closer releases the log file
// and is safe to call when none was opened.
func Setup(level, path string) (*log.Logger, func() error, error) {
	return setup(os.Stderr, level, path)
}

func setup(stderr io.Writer, level, path string) (*log.Logger, func() error, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		if lvl, err = log.ParseLevel(level); err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
	}

	out := stderr
	closer := func() error { return nil }
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}

		out, closer = f, f.Close
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           lvl,
		ReportTimestamp: path != "" || lvl <= log.DebugLevel,
		TimeFormat:      time.RFC3339,
	})

	return logger, closer, nil
}
