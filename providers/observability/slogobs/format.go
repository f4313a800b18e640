package slogobs

import (
	"os"
	"strings"
)

// Format selects the slog handler used for output.
type Format string

const (
	// FormatText uses slog.TextHandler (key=value pairs).
	FormatText Format = "text"
	// FormatJSON uses slog.JSONHandler, one object per line.
	FormatJSON Format = "json"
)

// ParseFormat maps a case-insensitive name to a Format, defaulting to FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// FormatFromEnv reads CLLM_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	for _, key := range []string{"CLLM_LOG_FORMAT", "LOG_FORMAT"} {
		if value := os.Getenv(key); value != "" {
			return ParseFormat(value)
		}
	}
	return FormatText
}
