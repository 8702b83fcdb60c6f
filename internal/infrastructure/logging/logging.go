package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Unknown levels fall back to info. Pretty
// output is meant for terminals; otherwise lines are JSON.
func New(level string, pretty bool) *zerolog.Logger {
	return NewWriter(os.Stderr, level, pretty)
}

func NewWriter(w io.Writer, level string, pretty bool) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &logger
}
