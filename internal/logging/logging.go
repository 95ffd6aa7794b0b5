// Package logging builds the slog loggers used by every command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// New returns a text logger writing to w. Debug records are kept only when verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// FileLogger is a logger backed by a timestamped file
type FileLogger struct {
	*slog.Logger
	Path string
	file *os.File
}

// Close flushes and closes the log file
func (l *FileLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// NewFileLogger creates dir if needed and opens geminichat_<timestamp>.log inside it.
// The terminal chat logs here so records do not corrupt the screen.
func NewFileLogger(dir string, verbose bool) (*FileLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("geminichat_%s.log", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileLogger{
		Logger: New(file, verbose),
		Path:   path,
		file:   file,
	}, nil
}
