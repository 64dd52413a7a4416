// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls logger formatting.
type Options struct {
	Level  string
	Pretty bool
	Writer io.Writer
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// yield info.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Setup builds a logger, installs it as the global logger and returns it.
func Setup(opt Options) zerolog.Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := ParseLevel(opt.Level)
	zerolog.SetGlobalLevel(level)

	l := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}
