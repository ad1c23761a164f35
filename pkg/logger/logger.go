package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger so components depend on an injected logger
// instead of a process-wide singleton.
type Logger struct {
	*zap.Logger
}

// New creates a logger with the given level ("debug", "info", "warn",
// "error") and encoding ("json" or "console").
func New(level, encoding string) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{l}, nil
}

// NewNop returns a no-op logger for tests.
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

// DebugContext logs at debug level. The context is accepted for call-site
// symmetry with request-scoped logging.
func (l *Logger) DebugContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Debug(msg, fields...)
}

// InfoContext logs at info level.
func (l *Logger) InfoContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Info(msg, fields...)
}

// ErrorContext logs at error level.
func (l *Logger) ErrorContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Error(msg, fields...)
}

// ErrorField builds a zap error field.
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

// StringField builds a zap string field.
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField builds a zap int field.
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Float64Field builds a zap float64 field.
func Float64Field(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// Field builds a zap field from an arbitrary value.
func Field(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}
