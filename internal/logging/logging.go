// Package logging builds the service-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a structured logger writing to out (os.Stdout when nil) at the
// given level, with the service name attached to every entry. Unknown levels
// fall back to info.
func New(out io.Writer, level, service string) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(level); err == nil && parsed != zerolog.NoLevel {
		lvl = parsed
	}

	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(out).Level(lvl).With().
		Timestamp().
		Str("service", service).
		Logger()
}
