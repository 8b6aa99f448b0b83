// Package config builds the CompilerContext: the logger and runtime
// options threaded explicitly through the compiler instead of relying
// on package-level globals (spec.md §9 "no singletons").
package config

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogConfig holds the three environment knobs that control logging
// sinks. They have no semantic effect on compilation output.
type LogConfig struct {
	Level  string // ASDL_LOG_LEVEL: debug|info|warn|error
	Format string // ASDL_LOG_FORMAT: human|json
	File   string // ASDL_LOG_FILE: path, or empty for stderr
}

// FromEnv reads LogConfig from the process environment.
func FromEnv() LogConfig {
	return LogConfig{
		Level:  os.Getenv("ASDL_LOG_LEVEL"),
		Format: os.Getenv("ASDL_LOG_FORMAT"),
		File:   os.Getenv("ASDL_LOG_FILE"),
	}
}

// NewLogger builds a logrus.Logger from cfg. Unrecognized or empty
// values fall back to info level, human-readable text output to
// stderr.
func NewLogger(cfg LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(orDefault(cfg.Level, "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		out = f
	}
	logger.SetOutput(out)

	return logger, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// CompilerContext bundles the logger and CLI-derived options every
// stage and command needs, passed explicitly rather than reached for
// as a global.
type CompilerContext struct {
	Logger *logrus.Logger
	Config LogConfig
}

// New builds a CompilerContext from the environment.
func New() (*CompilerContext, error) {
	cfg := FromEnv()
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &CompilerContext{Logger: logger, Config: cfg}, nil
}
