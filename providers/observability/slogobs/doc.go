// Package slogobs implements observability.Provider on top of log/slog.
// Spans, metric updates and log calls all become slog records: spans and
// metrics at debug level, log calls at their own level. Use [New] with
// [WithFormat], [WithLevel], [WithOutput] or [WithLogger].
package slogobs
