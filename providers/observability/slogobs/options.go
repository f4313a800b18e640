package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option configures an Observer.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	logger *slog.Logger
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput sets the destination writer. Defaults to stderr so that log
// lines never interleave with streamed model text on stdout.
func WithOutput(output io.Writer) Option {
	return func(c *config) { c.output = output }
}

// WithLogger uses logger as is; format, level and output are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
