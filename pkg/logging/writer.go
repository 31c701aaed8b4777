package logging

// An io.Writer implementation that logs each line written to it.

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

type LogWriter struct {
	logger zerolog.Logger
	level  zerolog.Level

	mu      sync.Mutex
	partial []byte // unterminated tail of the last write
}

// Writer returns a writer that logs every line written to it through logger,
// tagged with the scenario alias and process role. A line split across
// writes is logged once it is complete, or on Close.
func Writer(logger zerolog.Logger, alias string, role string, level zerolog.Level) *LogWriter {
	return &LogWriter{
		level:  level,
		logger: logger.With().Str("scenario", alias).Str("role", role).Logger(),
	}
}

func (w *LogWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.partial = append(w.partial, p...)

	rest := w.partial
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		w.emit(rest[:i])
		rest = rest[i+1:]
	}
	w.partial = w.partial[:copy(w.partial, rest)]

	return len(p), nil
}

// Close logs whatever is left of an unterminated last line.
func (w *LogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.emit(w.partial)
	w.partial = nil

	return nil
}

func (w *LogWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	w.logger.WithLevel(w.level).Msg(string(line))
}
