// Package logger provides the run-scoped file logger for gomsv.
//
// Each run writes a timestamped log file under the configured log directory
// and repoints a latest.log symlink at it. The logger is constructed from
// explicit configuration (level and directory) passed in by the caller; no
// environment variables are consulted or mutated.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Log levels, lowest to highest severity.
const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

// Logger writes leveled, timestamped lines to a per-run log file.
// It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	level   int
	discard bool
}

// Nop returns a logger that discards everything. Used when logging is
// disabled.
func Nop() *Logger {
	return &Logger{discard: true}
}

// New creates a file logger in dir with the given minimum level. The
// directory is created if needed; a latest.log symlink is pointed at the new
// run file. Valid levels are trace, debug, info, warn and error; anything
// else falls back to info.
func New(dir, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logger: create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: create run log file: %w", err)
	}

	symlink := filepath.Join(dir, "latest.log")
	if _, err := os.Lstat(symlink); err == nil {
		if err := os.Remove(symlink); err != nil {
			file.Close()
			return nil, fmt.Errorf("logger: remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(path), symlink); err != nil {
		file.Close()
		return nil, fmt.Errorf("logger: create latest.log symlink: %w", err)
	}

	l := &Logger{
		file:  file,
		path:  path,
		level: parseLevel(level),
	}

	l.write(levelInfo, "info", "gomsv run log started at %s", time.Now().Format(time.RFC3339))
	return l, nil
}

// Path returns the run log file path, or empty for a nop logger.
func (l *Logger) Path() string {
	return l.path
}

// Close flushes and closes the run log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Tracef logs at trace level.
func (l *Logger) Tracef(format string, args ...any) { l.write(levelTrace, "trace", format, args...) }

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) { l.write(levelDebug, "debug", format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { l.write(levelInfo, "info", format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) { l.write(levelWarn, "warn", format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { l.write(levelError, "error", format, args...) }

func (l *Logger) write(level int, name, format string, args ...any) {
	if l.discard || level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(l.file, "[%s] %-5s %s\n", timestamp, strings.ToUpper(name), fmt.Sprintf(format, args...))
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}
