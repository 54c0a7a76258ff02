package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the process logger is built. Logs always go to stderr
// so stdout carries only the verdict line.
type Options struct {
	Level zapcore.Level
	// File is an extra output path; empty means stderr only.
	File string
	// JSON switches the encoding from console to JSON.
	JSON bool
}

// New builds the process logger from a production encoder config.
func New(opts Options) (*zap.Logger, error) {
	cfg := Config(opts)
	return cfg.Build()
}

// Config returns the zap.Config New builds from. Exposed for tests.
func Config(opts Options) zap.Config {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := "console"
	if opts.JSON {
		encoding = "json"
	}

	paths := []string{"stderr"}
	if opts.File != "" {
		paths = append(paths, opts.File)
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(opts.Level),
		Development:       false,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     enc,
		OutputPaths:       paths,
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to a zap level.
// Unknown strings default to InfoLevel.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
