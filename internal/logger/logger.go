package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger wraps slog.Logger with session-oriented helpers. A disabled logger
// discards everything, so call sites never nil-check.
type Logger struct {
	*slog.Logger
	config Config
	file   *os.File
}

// Config holds logger configuration.
type Config struct {
	// Enabled controls whether logging is active.
	Enabled bool

	// Level sets the minimum log level.
	Level slog.Level

	// FilePath is the log file destination. The TUI owns stdout, so logs
	// only ever go to a file.
	FilePath string
}

// Disabled returns a logger that discards all output.
func Disabled() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError + 1,
		})),
	}
}

// New creates a logger writing JSON records to the configured file.
func New(config Config) (*Logger, error) {
	if !config.Enabled || config.FilePath == "" {
		return Disabled(), nil
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: config.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	})

	logger := &Logger{
		Logger: slog.New(handler),
		config: config,
		file:   file,
	}

	logger.Debug("Logger initialized",
		"level", config.Level.String(),
		"file", config.FilePath,
	)

	return logger, nil
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// WithSession adds session context to log entries.
func (l *Logger) WithSession(sessionID, tmuxName string) *Logger {
	return &Logger{
		Logger: l.Logger.With("session_id", sessionID, "tmux_name", tmuxName),
		config: l.config,
		file:   l.file,
	}
}

// Performance logs an operation's duration at debug level.
func (l *Logger) Performance(operation string, start time.Time, attrs ...slog.Attr) {
	duration := time.Since(start)
	allAttrs := append([]slog.Attr{
		slog.String("operation", operation),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}, attrs...)

	l.Logger.LogAttrs(context.Background(), slog.LevelDebug, "Performance metric", allAttrs...)
}

// DebugCommand logs an external command invocation.
func (l *Logger) DebugCommand(command string, args []string, workingDir string) {
	l.Debug("Executing command",
		"command", command,
		"args", args,
		"working_dir", workingDir,
	)
}
