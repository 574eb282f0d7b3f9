package logx

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog logger configured for console output.
func NewLogger() zerolog.Logger {
	return New(os.Stdout, zerolog.InfoLevel)
}

// New returns a console logger writing to out, filtered at level.
func New(out io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		// Extract just the filename, not the full path
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		// Pad to 24 characters for alignment
		return fmt.Sprintf("%-24s", fmt.Sprintf("%s:%d", short, line))
	}
	return zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
}

// ParseLevel parses a level name such as "debug" or "warn".
// An empty string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return lvl, nil
}
