// Package debug provides diagnostic logging using log/slog.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	logger  = slog.New(slog.DiscardHandler)
	enabled bool
	mu      sync.RWMutex
)

// Init switches debug logging on (to stderr) or off.
func Init(enable bool) {
	InitWriter(enable, os.Stderr)
}

// InitWriter is Init with an explicit destination.
func InitWriter(enable bool, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if !enable {
		logger = slog.New(slog.DiscardHandler)
		return
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs an info message
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs a warning message
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs an error message
func Error(msg string, args ...any) { current().Error(msg, args...) }
