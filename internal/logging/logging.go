// Package logging configures the structured zerolog output shared by
// the crawl and process stages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level string

	// File, when set, receives a JSON copy of every log entry in
	// addition to stderr.
	File string
}

// Setup configures the global zerolog logger. It returns a closer for
// the optional log file.
func Setup(cfg Config) (io.Closer, error) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	console := zerolog.ConsoleWriter{Out: os.Stderr}

	var closer io.Closer
	var output io.Writer = console
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closer = f
		output = zerolog.MultiLevelWriter(console, f)
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return closer, nil
}

// NewLogger creates a logger tagged with a component name. The crawl
// and process stages each get their own stream.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
