// debuglog.go - -D trace output
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// One Logger is opened per invocation, gated on whether any -D category
// is active at all, and handed out as plain debugf closures so callers
// never need to check p.cmd.Debug themselves.
package debuglog

import (
	"io"
	"os"

	"github.com/opencoff/go-logger"
)

// Logger wraps a go-logger.Logger behind the one thing every caller in
// this tree needs: a printf-shaped Debugf. A nil *Logger is valid and
// discards everything, so packages don't need a separate "debug enabled"
// check.
type Logger struct {
	lg logger.Logger
}

// New opens a debug logger writing to w (os.Stderr in cmd/bfs) tagged
// with name, or returns a discarding Logger when enabled is false.
func New(w io.Writer, name string, enabled bool) *Logger {
	if !enabled {
		return &Logger{}
	}
	lg, err := logger.NewLogger(w, logger.LOG_DEBUG, name, logger.Ldate|logger.Ltime|logger.Lmicroseconds)
	if err != nil {
		// fall back to stderr via the standard logger rather than
		// failing the whole run over a trace-only feature.
		lg, _ = logger.NewLogger(os.Stderr, logger.LOG_DEBUG, name, logger.Ldate|logger.Ltime)
	}
	return &Logger{lg: lg}
}

// Debugf matches the func(string, ...any) shape expr.Builder.Debug and
// parse.Parser.debugf expect.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.lg == nil {
		return
	}
	l.lg.Debug(format, args...)
}

func (l *Logger) Close() {
	if l != nil && l.lg != nil {
		l.lg.Close()
	}
}
