// Package logging provides structured logging infrastructure for pencode.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Level aliases for slog levels.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarn     = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

// DefaultName is the name of the root logger.
const DefaultName = "pencode"

// verbosityLevels maps the -v count to a threshold.
var verbosityLevels = []slog.Level{LevelInfo, LevelDebug, LevelWarn, LevelError, LevelCritical}

// LevelForVerbosity maps the CLI verbosity count to a level.
// 0 is INFO, 1 DEBUG, 2 WARNING, 3 ERROR and 4 CRITICAL.
func LevelForVerbosity(n int) (slog.Level, error) {
	if n < 0 || n >= len(verbosityLevels) {
		return 0, fmt.Errorf("verbosity must be between 0 and %d, got %d", len(verbosityLevels)-1, n)
	}
	return verbosityLevels[n], nil
}

// Logger wraps slog.Logger with pencode-specific configuration.
type Logger struct {
	*slog.Logger
	file *os.File
}

// Config contains logger configuration options.
type Config struct {
	Level  slog.Level
	Output io.Writer
	Color  bool

	// FilePath, when set, also appends uncolored records to that file.
	FilePath string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// New creates a new logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var handler slog.Handler = NewHandler(output, &HandlerOptions{
		Level: cfg.Level,
		Color: cfg.Color,
		Name:  DefaultName,
	})

	l := &Logger{}
	if cfg.FilePath != "" {
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
		}
		l.file = file
		handler = fanout{handler, NewHandler(file, &HandlerOptions{
			Level: cfg.Level,
			Name:  DefaultName,
		})}
	}

	l.Logger = slog.New(handler)
	return l, nil
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(NewHandler(io.Discard, &HandlerOptions{Level: LevelCritical + 1}))}
}

// Named returns a child logger printed under name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.With(nameKey, name), file: l.file}
}

// Critical logs at LevelCritical.
func (l *Logger) Critical(msg string, args ...any) {
	l.Log(context.Background(), LevelCritical, msg, args...)
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
