// Package logging writes the pipeline's run log. Lines use the
// [timestamp][LEVEL] format operators grep for, and are mirrored to the
// process logger so interactive runs show progress on stderr too.
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

type Logger struct {
	mu     sync.Mutex
	file   *os.File
	mirror bool
}

// Open appends to the log file at path, creating it if needed. mirror also
// echoes every line through the stdlib logger.
func Open(path string, mirror bool) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return &Logger{file: f, mirror: mirror}, nil
}

// Discard returns a logger that only mirrors to the process logger. Used by
// dry-run commands that must not touch the run log.
func Discard() *Logger {
	return &Logger{mirror: true}
}

func (l *Logger) Infof(format string, args ...any)  { l.write(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.write(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.write(LevelError, format, args...) }

func (l *Logger) write(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s][%s] %s\n", time.Now().UTC().Format(time.RFC3339), level, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.WriteString(line)
	}
	if l.mirror {
		log.Printf("[%s] %s", level, msg)
	}
}

// Close flushes and closes the underlying file.
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
