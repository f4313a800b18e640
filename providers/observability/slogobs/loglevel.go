package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below slog.LevelDebug and is off unless asked for.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps trace, debug, info, warn/warning and error to a slog.Level.
// Unknown names give slog.LevelWarn, which keeps an interactive session quiet.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LevelFromEnv reads CLLM_LOG_LEVEL, then LOG_LEVEL.
func LevelFromEnv() slog.Level {
	for _, key := range []string{"CLLM_LOG_LEVEL", "LOG_LEVEL"} {
		if value := os.Getenv(key); value != "" {
			return ParseLevel(value)
		}
	}
	return slog.LevelWarn
}

// replaceLevel names LevelTrace "TRACE" instead of slog's "DEBUG-4".
func replaceLevel(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level <= LevelTrace {
		attr.Value = slog.StringValue("TRACE")
	}
	return attr
}
