package obs

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts the names printed by Level.String, case-insensitively,
// plus "warning".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("obs: unknown log level %q", s)
	}
}

// Logger is a minimal logging interface for observability.
type Logger interface {
	Logf(level Level, format string, args ...interface{})
}

// FieldLogger is implemented by loggers that can carry structured fields.
type FieldLogger interface {
	Logger
	WithField(key string, value interface{}) Logger
}

// With returns l with key=value attached when l supports fields, and l
// unchanged otherwise.
func With(l Logger, key string, value interface{}) Logger {
	if fl, ok := l.(FieldLogger); ok {
		return fl.WithField(key, value)
	}
	return l
}

// NopLogger discards all logs.
type NopLogger struct{}

func (NopLogger) Logf(level Level, format string, args ...interface{}) {}

// LogrusLogger adapts a logrus entry.
type LogrusLogger struct {
	E *logrus.Entry
}

// NewLogrusLogger returns a LogrusLogger writing to w at min level and
// above, as JSON when json is set and as logfmt-style text otherwise.
func NewLogrusLogger(w io.Writer, min Level, json bool) LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(toLogrus(min))
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}
	return LogrusLogger{E: logrus.NewEntry(l)}
}

func (l LogrusLogger) Logf(level Level, format string, args ...interface{}) {
	if l.E == nil {
		return
	}
	l.E.Logf(toLogrus(level), format, args...)
}

func (l LogrusLogger) WithField(key string, value interface{}) Logger {
	if l.E == nil {
		return l
	}
	return LogrusLogger{E: l.E.WithField(key, value)}
}

func toLogrus(l Level) logrus.Level {
	switch l {
	case Debug:
		return logrus.DebugLevel
	case Warn:
		return logrus.WarnLevel
	case Error:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
