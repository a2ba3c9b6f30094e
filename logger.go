package eph

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global logger, which is also the logger of contexts that carry none.
// format is "console" or "json". Writes to w are serialized.
func SetupLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, e := zerolog.ParseLevel(level)
	if e != nil {
		return zerolog.Logger{}, e
	}

	if w == nil {
		w = os.Stderr
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(zerolog.SyncWriter(w)).Level(lvl).With().Timestamp().Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger

	return logger, nil
}
