// Package logging sets up the command's file logger. The terminal belongs to
// the UI, so nothing is ever logged to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Open returns a logger writing to path. An empty path discards everything.
// The returned closer releases the file.
func Open(path, level string) (zerolog.Logger, io.Closer, error) {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if parsedLevel == zerolog.NoLevel {
		parsedLevel = zerolog.InfoLevel
	}

	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := zerolog.New(logFile).Level(parsedLevel).With().Timestamp().Logger()
	return logger, logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
