// Package logging builds the zap loggers used across paracore.
package logging

import (
	"go.uber.org/zap"

	"github.com/chazu/paracore/pkg/config"
)

// New creates a logger from the logging configuration. An unparseable level
// falls back to info.
func New(cfg config.Logging) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("component", "paracore")), nil
}

// Must is New that falls back to a no-op logger on error.
func Must(cfg config.Logging) *zap.Logger {
	l, err := New(cfg)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Shape returns the fields identifying a shape in log entries.
func Shape(name, family string) []zap.Field {
	return []zap.Field{zap.String("shape", name), zap.String("family", family)}
}
