// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-vfs.
//
// go-vfs is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package adapters provides the pluggable logging seam for the VFS.
package adapters

import (
	"context"
	"log/slog"
	"os"
)

// Field is a structured logging key-value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is the interface the VFS logs through. Applications implement it
// to route VFS logs into their native logging framework (zap, zerolog,
// logrus); NewDefaultLogger provides an slog-backed default.
type Logger interface {
	// Debug logs a debug-level message with optional fields.
	Debug(ctx context.Context, msg string, fields ...Field)

	// Info logs an info-level message with optional fields.
	Info(ctx context.Context, msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields.
	Warn(ctx context.Context, msg string, fields ...Field)

	// Error logs an error-level message with optional fields.
	Error(ctx context.Context, msg string, fields ...Field)
}

// DefaultLogger logs through Go's standard slog package as JSON on stdout.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates the slog-backed default logger.
func NewDefaultLogger() Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &DefaultLogger{logger: slog.New(handler)}
}

func (l *DefaultLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *DefaultLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *DefaultLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *DefaultLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *DefaultLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// NoOpLogger discards all log messages. It is the default when no logger
// is supplied.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards everything.
func NewNoOpLogger() Logger { return NoOpLogger{} }

func (NoOpLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (NoOpLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (NoOpLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (NoOpLogger) Error(ctx context.Context, msg string, fields ...Field) {}
