// Package logging holds the process-wide zerolog logger used by gogsd.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger *zerolog.Logger

func init() {
	// JSON to stderr at info level until Init is called.
	l := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	logger = &l
}

// Init configures the package logger.
// If debug is true, chunk-level messages are logged too.
// If human is true, a console writer is used instead of JSON.
func Init(debug bool, human bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	var out io.Writer = os.Stderr
	if human {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(out).With().Timestamp().Logger().Level(level)
	logger = &l
}

// L returns the package logger.
func L() *zerolog.Logger {
	return logger
}

// SetLogger replaces the package logger (useful for testing).
func SetLogger(l zerolog.Logger) {
	logger = &l
}
