package logging

import (
	"io"
	"os"
	"time"

	"github.com/cedana/netbench/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	LOG_TIME_FORMAT = time.TimeOnly
	LOG_CALLER_SKIP = 3 // stack frame depth
)

type LineInfoHook struct{}

func (h LineInfoHook) Run(e *zerolog.Event, l zerolog.Level, msg string) {
	if l >= zerolog.ErrorLevel {
		e.Caller(LOG_CALLER_SKIP)
	}
}

func init() {
	InitLogger(config.Global.LogLevel)
}

func InitLogger(level string) {
	InitLoggerWithWriter(level, zerolog.ConsoleWriter{
		Out:          os.Stdout,
		TimeFormat:   LOG_TIME_FORMAT,
		TimeLocation: time.Local,
	})
}

func InitLoggerWithWriter(level string, w io.Writer) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	log.Logger = zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger().Hook(LineInfoHook{})
}

// ParseLevel parses a level string, where an empty or unknown
// level turns logging off.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" { // allow turning off logging
		return zerolog.Disabled
	}
	return l
}
