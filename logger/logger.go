package logger

import (
	"log/slog"
	"os"
)

// Logger is the logging capability injected into probekit components so tests
// can substitute their own recorder.
type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type StdLogger struct {
	internalLogger *slog.Logger
}

// New returns a Logger writing text records to stderr.
func New() Logger {
	l := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return &StdLogger{internalLogger: l}
}

// NewWithHandler wraps an existing slog handler, letting callers route
// probekit logs into their own pipeline.
func NewWithHandler(h slog.Handler) Logger {
	return &StdLogger{internalLogger: slog.New(h)}
}

func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.internalLogger.Info(msg, args...)
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	l.internalLogger.Debug(msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...interface{}) {
	l.internalLogger.Warn(msg, args...)
}

func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.internalLogger.Error(msg, args...)
}

// Discard returns a Logger that drops every record. Components constructed
// without an explicit logger default to this.
func Discard() Logger {
	return discardLogger{}
}

type discardLogger struct{}

func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Debug(string, ...interface{}) {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}
