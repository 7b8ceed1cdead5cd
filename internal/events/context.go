package events

import (
	"context"
	"os"
)

type contextKey int

const (
	loggerKey contextKey = iota
	draftIDKey
	taskIDKey
)

// FromContext extracts logger from context.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	// Return default logger
	return defaultLogger
}

// WithLogger adds logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithDraftID adds a draft ID to context.
func WithDraftID(ctx context.Context, id string) context.Context {
	logger := FromContext(ctx).WithField("draft_id", id)
	ctx = context.WithValue(ctx, draftIDKey, id)
	return WithLogger(ctx, logger)
}

// WithTaskID adds a sync task ID to context.
func WithTaskID(ctx context.Context, id string) context.Context {
	logger := FromContext(ctx).WithField("task_id", id)
	ctx = context.WithValue(ctx, taskIDKey, id)
	return WithLogger(ctx, logger)
}

// GetDraftID retrieves the draft ID from context.
func GetDraftID(ctx context.Context) string {
	if id, ok := ctx.Value(draftIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTaskID retrieves the sync task ID from context.
func GetTaskID(ctx context.Context) string {
	if id, ok := ctx.Value(taskIDKey).(string); ok {
		return id
	}
	return ""
}

var defaultLogger = &Logger{
	level:  InfoLevel,
	format: "text",
	output: os.Stdout,
	fields: make(map[string]interface{}),
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
