// Package logger provides leveled logging for verbum-lector. The printf-style
// helpers write through a log/slog handler so the desktop app and the HTTP
// server share one output format.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config value such as "debug" to a Level. Unknown values
// return LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger is a printf-style wrapper around a slog.Logger.
type Logger struct {
	slog  *slog.Logger
	level *slog.LevelVar
}

var (
	mu            sync.RWMutex
	defaultLevel  = new(slog.LevelVar)
	defaultFormat = FormatText
	defaultOutput io.Writer = os.Stdout
	defaultLogger = newLogger(defaultOutput, defaultFormat, defaultLevel)
)

func newLogger(w io.Writer, format Format, level *slog.LevelVar) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{slog: slog.New(h), level: level}
}

// New creates a new logger with the specified level and output.
func New(level Level, output io.Writer) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level.slogLevel())
	return newLogger(output, FormatText, lv)
}

// Configure rebuilds the default logger and installs it as the slog default.
func Configure(level Level, format Format, output io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if output == nil {
		output = os.Stdout
	}
	defaultLevel.Set(level.slogLevel())
	defaultFormat = format
	defaultOutput = output
	defaultLogger = newLogger(output, format, defaultLevel)
	slog.SetDefault(defaultLogger.slog)
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(level Level) {
	defaultLevel.Set(level.slogLevel())
}

// SetOutput sets the output writer for the default logger.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultOutput = w
	defaultLogger = newLogger(w, defaultFormat, defaultLevel)
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// With returns a child of the default logger tagged with component.
func With(component string) *Logger {
	return current().With("component", component)
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), level: l.level}
}

// Slog exposes the underlying slog.Logger for code that logs attributes.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) log(level Level, format string, args ...any) {
	lv := level.slogLevel()
	if !l.slog.Enabled(context.Background(), lv) {
		return
	}
	l.slog.Log(context.Background(), lv, fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...any) {
	current().Debug(format, args...)
}

// Info logs an informational message using the default logger.
func Info(format string, args ...any) {
	current().Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...any) {
	current().Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...any) {
	current().Error(format, args...)
}
