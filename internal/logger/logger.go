package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New initializes the service logger. devMode switches to human-readable
// console output; production stays on JSON.
func New(devMode bool) zerolog.Logger {
	if devMode {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
