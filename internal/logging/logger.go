// Package logging wires up the structured logger used by the lip-sync
// tooling.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a zerolog logger at the given level. Console mode uses the
// human-readable writer; otherwise JSON goes to stderr.
func New(level string, console bool) zerolog.Logger {
	lvl := parseLevel(level)

	var logger zerolog.Logger
	if console {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(lvl).With().
		Timestamp().
		Str("app", "lipsync").
		Logger()
}

// Component returns a child logger tagged with a component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
