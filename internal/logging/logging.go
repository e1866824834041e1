// Package logging configures zerolog for the binaries.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Setup sets the global level and returns a logger writing to w. format is
// "json" for one object per line; anything else gets the console writer.
// An unknown level falls back to info.
func Setup(level, format string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
