// Package logger configures the process logger from LOG_LEVEL and LOG_FORMAT.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

// Setup initialises the default logger, writing to stderr.
// verbose forces the debug level regardless of LOG_LEVEL.
func Setup(verbose bool) *slog.Logger {
	level := os.Getenv("LOG_LEVEL")
	if verbose {
		level = "debug"
	}
	l := New(os.Stderr, level, os.Getenv("LOG_FORMAT"))
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// New builds a logger. level is debug|info|warn|error (default info),
// format is text|json (default text).
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return slog.New(h)
}

// L returns the default logger, initialising it if needed.
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup(false)
	}
	return l
}
