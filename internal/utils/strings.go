package utils

import "fmt"

// TruncateString shortens s to at most maxLen bytes and records the original
// length in a suffix. A non-positive maxLen falls back to 500.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 500
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}
