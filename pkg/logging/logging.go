package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LevelForVerbosity maps the number of -v flags to a level: none shows
// warnings and errors, one adds progress, two or more add debug output.
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// New creates a logger writing to w, stderr when w is nil. Pretty enables
// the human readable console format.
func New(w io.Writer, verbosity int, pretty bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	writer := w
	if pretty {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
		}
	}

	return zerolog.New(writer).
		Level(LevelForVerbosity(verbosity)).
		With().
		Timestamp().
		Logger()
}
