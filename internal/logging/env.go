package logging

import (
	"io"
	"os"
	"strings"
)

const (
	EnvLogLevel  = "PERFDECK_LOG_LEVEL"
	EnvLogFormat = "PERFDECK_LOG_FORMAT"
)

// Options is the logger setup before environment overrides are applied.
type Options struct {
	Level  Level
	Format Format
}

// FromEnv builds a logger for out, letting PERFDECK_LOG_LEVEL and
// PERFDECK_LOG_FORMAT override the configured values.
func FromEnv(out io.Writer, opts Options) Logger {
	applyEnvOverrides(&opts)
	return NewWithFormat(out, opts.Level, opts.Format)
}

func applyEnvOverrides(opts *Options) {
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		opts.Level = ParseLevel(raw)
	}
	if raw := strings.TrimSpace(os.Getenv(EnvLogFormat)); raw != "" {
		opts.Format = ParseFormat(raw)
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
}
