// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel overrides the configured log level.
const EnvLevel = "TUICI_LOG_LEVEL"

// DefaultLevel is used when neither config nor env set a level.
const DefaultLevel = "info"

// Setup points the global logger at path, since the TUI owns the terminal.
// An empty path discards output. The returned closer releases the file.
func Setup(level, path string) (io.Closer, error) {
	lvl, err := ResolveLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if path == "" {
		log.Logger = zerolog.New(io.Discard)
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Logger = zerolog.New(file).With().Timestamp().Logger()
	return file, nil
}

// ResolveLevel picks the env override, then level, then DefaultLevel.
func ResolveLevel(level string) (zerolog.Level, error) {
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		level = v
	}
	if strings.TrimSpace(level) == "" {
		level = DefaultLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
