// Package logger provides the structured logging facade used across the
// campaign service. It wraps logrus so components depend on a small surface
// rather than the logging backend directly.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a named, structured logger. The zero value is not usable; build
// one with New or NewDefault.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger writing to the given logrus instance under a component
// name.
func New(backend *logrus.Logger, component string) *Logger {
	return &Logger{entry: backend.WithField("component", component)}
}

// NewDefault creates a logger with a standalone backend configured from the
// LOG_LEVEL and LOG_FORMAT environment variables.
func NewDefault(component string) *Logger {
	backend := logrus.New()
	backend.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	backend.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		backend.SetFormatter(&logrus.JSONFormatter{})
	} else {
		backend.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return New(backend, component)
}

// WithField returns a logger carrying an extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger carrying several extra fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError returns a logger carrying the error as a field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
