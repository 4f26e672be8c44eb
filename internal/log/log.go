// Package log provides categorized structured logging for unreal-companion.
// It wraps log/slog with a small facade so call sites tag every entry with a
// subsystem category, which keeps grep-ability when everything funnels into a
// single log file under the global config directory.
package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Category identifies the subsystem emitting a log entry.
type Category string

const (
	// CatResolver tags definition discovery and merging.
	CatResolver Category = "resolver"
	// CatStore tags session store reads and writes.
	CatStore Category = "store"
	// CatEngine tags session lifecycle operations.
	CatEngine Category = "engine"
	// CatSync tags legacy store reconciliation.
	CatSync Category = "sync"
	// CatConfig tags configuration loading.
	CatConfig Category = "config"
	// CatDB tags SQLite access.
	CatDB Category = "db"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	closer io.Closer
)

// Init routes log output to a file at path, creating parent directories as
// needed. The level string is one of debug, info, warn, error (default info).
// Returns an error only when the file cannot be opened; callers typically
// degrade to the discard logger on failure.
func Init(path, level string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // G304: path comes from our own config dir
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(level)}))
	return nil
}

// SetOutput redirects log output to an arbitrary writer at the given level.
// Used by tests and by commands that want logs on stderr.
func SetOutput(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

// Close flushes and closes the log file if one was opened via Init.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return err
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug-level entry tagged with the given category.
func Debug(cat Category, msg string, kv ...any) {
	current().Debug(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Info logs an info-level entry tagged with the given category.
func Info(cat Category, msg string, kv ...any) {
	current().Info(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Warn logs a warn-level entry tagged with the given category.
func Warn(cat Category, msg string, kv ...any) {
	current().Warn(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Error logs an error-level entry tagged with the given category.
func Error(cat Category, msg string, kv ...any) {
	current().Error(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// ErrorErr logs an error-level entry with the error attached as an attribute.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	current().Error(msg, append([]any{"cat", string(cat), "error", err}, kv...)...)
}
