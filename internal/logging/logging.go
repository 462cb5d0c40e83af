package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is the debug log level.
	LevelDebug Level = iota
	// LevelInfo is the info log level.
	LevelInfo
	// LevelWarn is the warning log level.
	LevelWarn
	// LevelError is the error log level.
	LevelError
)

// Logger is a leveled logger. The zero value is not usable; construct one
// with New or use Default.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a Logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(w, "", log.LstdFlags),
	}
}

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
)

// Default returns the shared process logger. Its level comes from the
// DEBUG and LOG_LEVEL environment variables, defaulting to info.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(os.Stderr, LevelFromEnv())
	})
	return defaultLogger
}

// LevelFromEnv derives a log level from DEBUG and LOG_LEVEL.
func LevelFromEnv() Level {
	if debug := os.Getenv("DEBUG"); debug != "" {
		switch strings.ToLower(debug) {
		case "1", "true", "yes", "on":
			return LevelDebug
		}
	}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Level returns the logger's current level.
func (l *Logger) Level() Level {
	return l.level
}

// IsDebugEnabled returns true if debug logging is enabled.
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= LevelDebug
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.out.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level <= LevelInfo {
		l.out.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.out.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level <= LevelError {
		l.out.Printf("[ERROR] "+format, args...)
	}
}

// Printf logs a message regardless of level.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.out.Printf(format, args...)
}

// String returns the string representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
