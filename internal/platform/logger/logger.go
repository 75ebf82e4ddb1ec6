package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/trooth/llm-service/internal/config"
)

// Setup initializes the service's logging based on the provided
// configuration. It creates a structured JSON logger at the configured
// level, sets it as the process default, and returns it.
func Setup(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(cfg.Level, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// newLogger builds a JSON slog.Logger writing to w at the given level.
// Unknown levels fall back to info with a warning on stderr.
func newLogger(configuredLevel string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(configuredLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo

		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", configuredLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
