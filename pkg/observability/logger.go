// Package observability provides structured JSON logging for glossa
// services. All components log through the Logger interface so tests can
// swap in a no-op implementation.
package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

// Logger is the logging interface used across glossa packages.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	// WithPrefix returns a logger tagged with a different component name.
	WithPrefix(prefix string) Logger
	// With returns a logger that adds the given fields to every entry.
	With(fields map[string]interface{}) Logger
}

type zeroLogger struct {
	name string
	w    io.Writer
	zl   zerolog.Logger
}

// NewLogger returns a JSON logger writing to stderr, tagged with the given
// component name.
func NewLogger(name string) Logger {
	return NewLoggerWithWriter(name, os.Stderr)
}

// NewLoggerWithWriter returns a JSON logger writing to w. Tests use this to
// capture output.
func NewLoggerWithWriter(name string, w io.Writer) Logger {
	zl := zerolog.New(w).With().Timestamp().Str("logger", name).Logger()
	return &zeroLogger{name: name, w: w, zl: zl}
}

// SetLevel sets the global minimum log level. Unknown level names fall back
// to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func (l *zeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *zeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *zeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *zeroLogger) Error(msg string, fields map[string]interface{}) {
	l.zl.Error().Fields(fields).Msg(msg)
}

func (l *zeroLogger) Fatal(msg string, fields map[string]interface{}) {
	l.zl.Fatal().Fields(fields).Msg(msg)
}

func (l *zeroLogger) Debugf(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *zeroLogger) Infof(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *zeroLogger) Warnf(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *zeroLogger) Errorf(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

func (l *zeroLogger) Fatalf(format string, args ...interface{}) {
	l.zl.Fatal().Msgf(format, args...)
}

func (l *zeroLogger) WithPrefix(prefix string) Logger {
	return NewLoggerWithWriter(prefix, l.w)
}

func (l *zeroLogger) With(fields map[string]interface{}) Logger {
	zl := l.zl.With().Fields(fields).Logger()
	return &zeroLogger{name: l.name, w: l.w, zl: zl}
}
