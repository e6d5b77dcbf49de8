// Package loggy is a thin wrapper around log/slog providing a global logger,
// per-component child loggers, and a discard logger for tests.
package loggy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Config configures the logger.
type Config struct {
	Level     slog.Level
	Format    string // "text" or "json"
	Output    string // "stdout", "stderr", or a file path
	AddSource bool   // include caller position in records
}

// DefaultConfig returns the logger defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    "stderr",
		AddSource: false,
	}
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger wraps a slog.Logger.
type Logger struct {
	slogger   *slog.Logger
	addSource bool
}

// Init initializes the global logger once. Subsequent calls are no-ops.
func Init(cfg Config) error {
	var initErr error
	once.Do(func() {
		var output io.Writer
		switch cfg.Output {
		case "stdout":
			output = os.Stdout
		case "stderr", "":
			output = os.Stderr
		default:
			if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
				initErr = fmt.Errorf("creating log directory: %w", err)
				return
			}
			file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				initErr = fmt.Errorf("opening log file: %w", err)
				return
			}
			output = file
		}

		opts := &slog.HandlerOptions{Level: cfg.Level}

		var handler slog.Handler
		if cfg.Format == "json" {
			handler = slog.NewJSONHandler(output, opts)
		} else {
			handler = slog.NewTextHandler(output, opts)
		}

		logger := &Logger{slogger: slog.New(handler)}
		if cfg.AddSource {
			logger.addSource = true
		}
		globalLogger = logger
	})

	if initErr != nil {
		NewNoopLogger()
	}
	return initErr
}

// GetGlobalLogger returns the global logger, initializing a default one if needed.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		_ = Init(DefaultConfig())
	}
	return globalLogger
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(logger *Logger) {
	globalLogger = logger
}

// NewNoopLogger creates a logger that discards everything and installs it as
// the global logger. Intended for tests.
func NewNoopLogger() *Logger {
	noop := &Logger{
		slogger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})),
	}
	SetGlobalLogger(noop)
	return noop
}

// Debug logs at debug level using the global logger.
func Debug(msg string, args ...any) { GetGlobalLogger().log(slog.LevelDebug, msg, args...) }

// Info logs at info level using the global logger.
func Info(msg string, args ...any) { GetGlobalLogger().log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level using the global logger.
func Warn(msg string, args ...any) { GetGlobalLogger().log(slog.LevelWarn, msg, args...) }

// Error logs at error level using the global logger.
func Error(msg string, args ...any) { GetGlobalLogger().log(slog.LevelError, msg, args...) }

// With returns a child of the global logger carrying the given attributes.
func With(args ...any) *Logger {
	return GetGlobalLogger().With(args...)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.slogger == nil {
		return l
	}
	return &Logger{slogger: l.slogger.With(args...), addSource: l.addSource}
}

// WithError returns a child logger annotated with the error text and type.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With("error", err.Error(), "error_type", fmt.Sprintf("%T", err))
}

// Handler exposes the underlying slog.Handler.
func (l *Logger) Handler() slog.Handler {
	return l.slogger.Handler()
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if l == nil || l.slogger == nil {
		return
	}
	if !l.slogger.Handler().Enabled(context.Background(), level) {
		return
	}
	if l.addSource {
		if file, line, ok := caller(3); ok {
			args = append(args, "source", fmt.Sprintf("%s:%d", filepath.Base(file), line))
		}
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.Add(args...)
	_ = l.slogger.Handler().Handle(context.Background(), r)
}

func caller(skip int) (string, int, bool) {
	_, file, line, ok := runtime.Caller(skip)
	return file, line, ok
}
