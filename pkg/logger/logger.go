// Package logger defines the structured logging interface used across the
// service. The concrete implementation lives in
// internal/infrastructure/monitoring and is backed by zap; this package only
// carries the contract so that domain and infrastructure code never import a
// logging library directly.
package logger

import (
	"context"
	"strings"
	"time"

	"github.com/octanews/authcore/pkg/constants"
)

// Logger is the structured logging contract. Every call takes a context so
// implementations can attach request-scoped correlation fields.
type Logger interface {
	Debug(ctx context.Context, message string, fields ...Field)
	Info(ctx context.Context, message string, fields ...Field)
	Warn(ctx context.Context, message string, fields ...Field)
	Error(ctx context.Context, message string, err error, fields ...Field)
	Fatal(ctx context.Context, message string, err error, fields ...Field)

	// WithComponent returns a logger scoped to a named component.
	WithComponent(component string) Logger

	// WithFields returns a logger that attaches fields to every entry.
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an integer field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 creates an int64 field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Bool creates a boolean field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration creates a duration field rendered in its string form.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates an RFC3339 time field.
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field of any type.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// sensitiveKeys lists substrings of field keys whose values must be masked.
var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"private_key",
}

// Sanitize masks the value of a field whose key looks sensitive. Used by
// implementations before emitting entries.
func Sanitize(f Field) Field {
	keyLower := strings.ToLower(f.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(keyLower, s) {
			if str, ok := f.Value.(string); ok && str != "" {
				return Field{Key: f.Key, Value: mask(str)}
			}
			return Field{Key: f.Key, Value: "***"}
		}
	}
	return f
}

func mask(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

// WithRequestID returns a context carrying the per-request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

// RequestID extracts the per-request correlation id from ctx, if present.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(constants.ContextKeyRequestID).(string)
	return id, ok && id != ""
}
