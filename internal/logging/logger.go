// Package logging defines the structured logger used across the service.
package logging

import (
	"context"
	"io"
	"log/slog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "upload stored", "publicId", id, "bytes", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// New returns a JSON logger writing to w. Debug output is enabled outside production.
func New(w io.Writer, production bool) Logger {
	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}
	return handlerLogger{l: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return handlerLogger{l: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// handlerLogger adapts a *slog.Logger to Logger; every level goes through Log
// so the handler sees the caller's context.
type handlerLogger struct {
	l *slog.Logger
}

func (h handlerLogger) Debug(ctx context.Context, msg string, args ...any) {
	h.l.Log(ctx, slog.LevelDebug, msg, args...)
}

func (h handlerLogger) Info(ctx context.Context, msg string, args ...any) {
	h.l.Log(ctx, slog.LevelInfo, msg, args...)
}

func (h handlerLogger) Warn(ctx context.Context, msg string, args ...any) {
	h.l.Log(ctx, slog.LevelWarn, msg, args...)
}

func (h handlerLogger) Error(ctx context.Context, msg string, args ...any) {
	h.l.Log(ctx, slog.LevelError, msg, args...)
}

func (h handlerLogger) With(args ...any) Logger {
	return handlerLogger{l: h.l.With(args...)}
}
