package app

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// AtomicLogger holds a *slog.Logger that can be swapped on config reload.
type AtomicLogger struct {
	out io.Writer
	v   atomic.Pointer[slog.Logger]
}

// NewAtomicLogger creates a logger writing to out (stdout when nil).
func NewAtomicLogger(level, format string, out io.Writer) *AtomicLogger {
	if out == nil {
		out = os.Stdout
	}
	l := &AtomicLogger{out: out}
	l.Reconfigure(level, format)
	return l
}

// Get returns the current logger.
func (l *AtomicLogger) Get() *slog.Logger {
	return l.v.Load()
}

// Reconfigure replaces the logger with one using level and format.
func (l *AtomicLogger) Reconfigure(level, format string) {
	l.v.Store(newSlogLogger(level, format, l.out))
}

func newSlogLogger(level, format string, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogAdapter adapts AtomicLogger to the logger.Logger interface. It reads
// the current logger on every call so reloads take effect immediately.
type slogAdapter struct {
	logger *AtomicLogger
}

func (a *slogAdapter) Debug(msg string, keysAndValues ...any) {
	a.logger.Get().Debug(msg, keysAndValues...)
}

func (a *slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Get().Info(msg, keysAndValues...)
}

func (a *slogAdapter) Warn(msg string, keysAndValues ...any) {
	a.logger.Get().Warn(msg, keysAndValues...)
}

func (a *slogAdapter) Error(msg string, keysAndValues ...any) {
	a.logger.Get().Error(msg, keysAndValues...)
}
