// Package logging wraps zap for the CLI and library callers that want
// structured diagnostics around a normalization call, without forcing a
// logging dependency on the pure pipeline itself.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger with fingerprinting-specific helpers.
type Logger struct {
	*zap.Logger
}

// New builds a Logger at the given level ("debug", "info", "warn",
// "error"), emitting JSON when format is "json" and human-readable
// console output otherwise.
func New(level string, format string) (*Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var config zap.Config
	if format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// Nop returns a Logger that discards everything, for library callers and
// tests that don't want CLI-style diagnostics.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// LogNormalize records the outcome of a single normalize call: the
// dialect name as given, whether it succeeded, and (on success) the number of
// extracted params and the resulting hash.
func (l *Logger) LogNormalize(dialect string, sql string, hash string, paramCount int, err error) {
	fields := []zap.Field{
		zap.String("dialect", dialect),
		zap.Int("input_len", len(sql)),
	}
	if err != nil {
		l.Error("normalize_failed", append(fields, zap.Error(err))...)
		return
	}
	l.Info("normalize_ok", append(fields,
		zap.String("hash", hash),
		zap.Int("param_count", paramCount),
	)...)
}
