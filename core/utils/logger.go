package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger keeps the printf-style surface used across the code base on top of slog.
type Logger struct {
	l *slog.Logger
}

func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stderr, slog.LevelInfo)
}

func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	return &Logger{l: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return &Logger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Error(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Debug(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// With returns a child logger carrying the given key/value attributes.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.l == nil {
		return l
	}
	return &Logger{l: l.l.With(args...)}
}
