// Package log builds the application's slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mmcdole/vista/internal/config"
)

// SetupLogger returns a JSON logger writing to the configured file, rotated
// by size. The returned closer releases the file.
func SetupLogger(cfg *config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	// Expand ~ in path
	logPath := cfg.File
	if strings.HasPrefix(logPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		logPath = filepath.Join(home, logPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename: logPath,
		MaxSize:  cfg.MaxSizeMB, // MB
		MaxAge:   cfg.MaxAgeDays,
	}
	return New(rotator, cfg.Level), rotator, nil
}

// New returns a JSON logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           parseLogLevel(level),
		Formatter:       charmlog.JSONFormatter,
		ReportTimestamp: true,
	})
	return slog.New(handler)
}

// parseLogLevel converts a string log level to a charm log level
func parseLogLevel(level string) charmlog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return charmlog.DebugLevel
	case "INFO":
		return charmlog.InfoLevel
	case "WARN", "WARNING":
		return charmlog.WarnLevel
	case "ERROR":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// NullLogger returns a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
