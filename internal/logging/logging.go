package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger writing to stderr.
// If verbose is true, debug events are emitted as well.
func NewLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// WithComponent tags a sub-logger so log lines can be traced back to
// the part of the pipeline that emitted them.
func WithComponent(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
