package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aldersync/voice-core/internal/infrastructure/config"
)

// Logger is the application logger: slog with the service identity
// attached to every record. Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of config.yaml.
//
// Format selects the handler (JSON for machines, text for a terminal),
// output selects stdout or stderr, and level filters records below it.
// Every record carries service="voicecore" and the given version, so
// log aggregation can tell deployments apart.
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Build version stamped onto every record
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "voicecore"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// parseLevel converts a config level string to slog.Level.
// Unrecognised values fall back to info rather than failing startup.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// With returns a child Logger carrying extra default attributes, useful
// for tagging a whole component:
//
//	governorLog := logger.With("component", "session")
//	governorLog.Warn("quota exhausted", "session_id", id)
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default returns the bootstrap logger used before configuration is
// loaded: JSON to stdout at info level, version "dev". Once config.Load
// succeeds the caller should switch to New.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
