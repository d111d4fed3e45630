// Package eventlog is the logging capability handed to every warehouse component.
package eventlog

import (
	"log"
	"strings"
)

// Level is the severity of an event.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) rank() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

// Enabled reports whether an event at level l passes a minimum of min.
func (l Level) Enabled(min Level) bool {
	return l.rank() >= min.rank()
}

// Logger receives events. Implementations must not block the caller for long
// and must never fail the caller.
type Logger interface {
	Log(message string, level Level, source string)
}

// StdLogger writes events through a standard library logger.
type StdLogger struct {
	out *log.Logger
	min Level
}

// NewStdLogger creates a StdLogger that drops events below min.
func NewStdLogger(out *log.Logger, min Level) *StdLogger {
	if out == nil {
		out = log.Default()
	}
	return &StdLogger{out: out, min: min}
}

// Log prints "[LEVEL][source] message".
func (l *StdLogger) Log(message string, level Level, source string) {
	if !level.Enabled(l.min) {
		return
	}
	l.out.Printf("[%s][%s] %s", level, source, message)
}

// Multi fans an event out to several loggers.
type Multi []Logger

func (m Multi) Log(message string, level Level, source string) {
	for _, l := range m {
		if l != nil {
			l.Log(message, level, source)
		}
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Log(string, Level, string) {}
