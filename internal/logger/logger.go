// Package logger configures slog and threads request-scoped attributes through contexts.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type ctxKey struct{}

// scope is the request-scoped state carried in a context
type scope struct {
	requestID string
	attrs     []any
}

// InitLogger installs the default logger writing to stdout
func InitLogger(cfg Config) {
	InitLoggerWithWriter(cfg, os.Stdout)
}

// InitLoggerWithWriter installs the default logger writing to w
func InitLoggerWithWriter(cfg Config, w io.Writer) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel(), AddSource: cfg.AddSource}
	slog.SetDefault(slog.New(cfg.handler(opts, w)))
}

// GenerateRequestID returns a fresh request identifier
func GenerateRequestID() string {
	return uuid.NewString()
}

func scopeFrom(ctx context.Context) scope {
	if s, ok := ctx.Value(ctxKey{}).(scope); ok {
		return s
	}
	return scope{}
}

// WithRequestID returns a context whose loggers carry requestID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	s := scopeFrom(ctx)
	s.requestID = requestID
	return context.WithValue(ctx, ctxKey{}, s)
}

// WithAttrs returns a context whose loggers also carry the given key/value pairs.
// Pairs beyond maxContextAttrs are dropped.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	s := scopeFrom(ctx)
	room := maxContextAttrs*2 - len(s.attrs)
	if room <= 0 {
		return ctx
	}
	if len(args) > room {
		args = args[:room]
	}
	merged := make([]any, 0, len(s.attrs)+len(args))
	merged = append(merged, s.attrs...)
	s.attrs = append(merged, args...)
	return context.WithValue(ctx, ctxKey{}, s)
}

// GetRequestID returns the request ID or an empty string
func GetRequestID(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// FromContext returns the default logger decorated with whatever the context carries
func FromContext(ctx context.Context) *slog.Logger {
	s := scopeFrom(ctx)
	l := slog.Default()
	if s.requestID != "" {
		l = l.With(KeyRequestID, s.requestID)
	}
	if len(s.attrs) > 0 {
		l = l.With(s.attrs...)
	}
	return l
}
