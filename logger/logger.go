package logger

import (
	"github.com/evdnx/golog"
)

// Field re-exports golog.Field so callers do not depend on the concrete logger.
type Field = golog.Field

// Level re-exports golog.Level so callers can pick a verbosity for
// NewZapLoggerAtLevel without importing golog directly.
type Level = golog.Level

// Logger defines the minimal logging surface used across the codebase.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// gologLogger adapts golog.Logger to the local Logger interface.
type gologLogger struct {
	inner *golog.Logger
}

func (l *gologLogger) Info(msg string, fields ...Field) {
	l.inner.Info(msg, fields...)
}

func (l *gologLogger) Warn(msg string, fields ...Field) {
	l.inner.Warn(msg, fields...)
}

func (l *gologLogger) Error(msg string, fields ...Field) {
	l.inner.Error(msg, fields...)
}

// nopLogger discards everything. Useful in tests and for callers that do
// not want structured logging out of a tournament run.
type nopLogger struct{}

func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

// ---------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------

// NewZapLogger creates a production-ready logger wired to golog with JSON
// output at info level -- the verbosity a tournament run logs at by
// default.
func NewZapLogger() (Logger, error) {
	return NewZapLoggerAtLevel(golog.InfoLevel)
}

// NewZapLoggerAtLevel is NewZapLogger with an explicit level, for callers
// that want a tournament run's verbosity other than info without
// recompiling.
func NewZapLoggerAtLevel(level Level) (Logger, error) {
	l, err := golog.NewLogger(
		golog.WithStdOutProvider(golog.JSONEncoder),
		golog.WithLevel(level),
	)
	if err != nil {
		return nil, err
	}
	return &gologLogger{inner: l}, nil
}

// NewNopLogger returns a Logger that discards all messages.
func NewNopLogger() Logger { return nopLogger{} }

// ---------------------------------------------------------------------
// Field helpers
// ---------------------------------------------------------------------

// Structured field helpers re-exported for convenience.
var (
	String   = golog.String
	Int      = golog.Int
	Float64  = golog.Float64
	Any      = golog.Any
	Err      = golog.Err
	Duration = golog.Duration
)

// Engine tags a log line with the bootstrap engine name (e.g. "BCa",
// "PercentileT") it originated from -- every warning the orchestrator
// logs about a failed engine carries one of these.
func Engine(name string) Field {
	return golog.String("engine", name)
}
