// Package logger provides structured logging utilities.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/ricesearch/term-eval/internal/pkg/security"
)

// Logger wraps slog.Logger with additional context.
type Logger struct {
	*slog.Logger
}

// New creates a new logger with the specified level and format.
// Output goes to stderr; stdout is reserved for reports.
func New(level, format string) *Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level, format string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTerm returns a logger with source term context. Terms come from
// input files and are sanitized.
func (l *Logger) WithTerm(source string) *Logger {
	return &Logger{
		Logger: l.With("source", security.SanitizeForLog(source)),
	}
}

// WithFile returns a logger with input file context.
func (l *Logger) WithFile(path string) *Logger {
	return &Logger{
		Logger: l.With("file", path),
	}
}

// WithError returns a logger with error context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.With("error", err.Error()),
	}
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

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error", "text")
}
