// Package logging builds the zerolog logger shared by the CLI and the engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the log level and output format.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // json or console
	Output io.Writer
}

// New returns a logger for cfg. An empty Output writes to stderr.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel converts a level name to a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %s", s)
	}
	return level, nil
}
