// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures New.
type Option func(*options)

type options struct {
	level  string
	format string
	out    io.Writer
	fields map[string]any
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error").
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithFormat selects "json" or "console" encoding.
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// WithOutput redirects log output. The default is stderr so that data written
// to stdout stays clean.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithFields attaches fields to every entry.
func WithFields(fields map[string]any) Option {
	return func(o *options) {
		if o.fields == nil {
			o.fields = make(map[string]any, len(fields))
		}
		for k, v := range fields {
			if k != "" {
				o.fields[k] = v
			}
		}
	}
}

// New returns a logger writing at the configured level and encoding.
func New(opts ...Option) (*zap.Logger, error) {
	o := options{level: "info", format: "console", out: os.Stderr}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	level, err := zapcore.ParseLevel(o.level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(o.format) {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console", "text", "":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format: %q", o.format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(o.out), zap.NewAtomicLevelAt(level))

	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, o.fields[k]))
	}

	return zap.New(core, zap.AddCaller(), zap.Fields(fields...)), nil
}
