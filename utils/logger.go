package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level orders log severities from most to least verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps DEBUG/INFO/WARN/ERROR (any case) to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled, colored logging throughout the application.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	level Level

	debug *color.Color
	info  *color.Color
	warn  *color.Color
	error *color.Color
}

// NewLogger creates a Logger writing to stdout/stderr at the given minimum level.
func NewLogger(level string) *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, ParseLevel(level))
}

// NewLoggerTo creates a Logger writing info-and-below to out and errors to errOut.
func NewLoggerTo(out, errOut io.Writer, level Level) *Logger {
	return &Logger{
		out:   out,
		err:   errOut,
		level: level,
		debug: color.New(color.FgCyan),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		error: color.New(color.FgRed, color.Bold),
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) write(level Level, label *color.Color, name, format string, args ...any) {
	if level < l.level {
		return
	}
	w := l.out
	if level == LevelError {
		w = l.err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(w, "[%s] %s %s\n", l.timestamp(), label.Sprintf("%-5s", name), fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.write(LevelInfo, l.info, "INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.write(LevelWarn, l.warn, "WARN", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.write(LevelError, l.error, "ERROR", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.write(LevelDebug, l.debug, "DEBUG", format, args...)
}
