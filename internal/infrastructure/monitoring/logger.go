// Package monitoring provides the zap-backed logger implementation and the
// Prometheus metrics registry for the authcore service.
package monitoring

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/pkg/logger"
)

type zapLogger struct {
	zl        *zap.Logger
	level     zap.AtomicLevel
	component string
	base      []logger.Field
}

// LevelSetter is implemented by loggers whose minimum level can be adjusted
// at runtime, e.g. from a config reload.
type LevelSetter interface {
	SetLevel(level string)
}

// NewZapLogger creates a Logger backed by zap with a JSON encoder and
// ISO8601 timestamps, matching the service's log aggregation pipeline.
func NewZapLogger(cfg *config.LogConfig) (logger.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	parsed, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	level := zap.NewAtomicLevelAt(parsed)

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	return &zapLogger{
		zl:    zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)),
		level: level,
	}, nil
}

// SetLevel adjusts the minimum level at runtime. Unparsable levels are
// ignored so a bad config reload cannot silence the logger.
func (l *zapLogger) SetLevel(level string) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	l.level.SetLevel(parsed)
}

// NewNopLogger returns a logger that discards everything. Used in tests.
func NewNopLogger() logger.Logger {
	return &zapLogger{zl: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...logger.Field) {
	l.zl.Debug(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...logger.Field) {
	l.zl.Info(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...logger.Field) {
	l.zl.Warn(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Field) {
	if err != nil {
		fields = append(fields, logger.Err(err))
	}
	l.zl.Error(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Field) {
	if err != nil {
		fields = append(fields, logger.Err(err))
	}
	l.zl.Fatal(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{zl: l.zl, level: l.level, component: component, base: l.base}
}

func (l *zapLogger) WithFields(fields ...logger.Field) logger.Logger {
	merged := make([]logger.Field, 0, len(l.base)+len(fields))
	merged = append(merged, l.base...)
	merged = append(merged, fields...)
	return &zapLogger{zl: l.zl, level: l.level, component: l.component, base: merged}
}

func (l *zapLogger) convert(ctx context.Context, fields []logger.Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(l.base)+len(fields)+2)

	if l.component != "" {
		zapFields = append(zapFields, zap.String("component", l.component))
	}
	if ctx != nil {
		if id, ok := logger.RequestID(ctx); ok {
			zapFields = append(zapFields, zap.String("request_id", id))
		}
	}

	for _, f := range l.base {
		f = logger.Sanitize(f)
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	for _, f := range fields {
		f = logger.Sanitize(f)
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}

	return zapFields
}
