// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog, zap or zerolog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "scan finished", "resource_id", id, "score", score)
type Logger interface {
	// Debug logs a diagnostic message, normally disabled in production.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

type fieldsKey struct{}

// ContextWith returns a copy of ctx whose log lines carry args ahead of their
// own key–value pairs. Calls nest; outer fields come first.
//
//	ctx = logging.ContextWith(ctx, "resource", r.ID, "trigger", "auto")
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	return context.WithValue(ctx, fieldsKey{}, withContextFields(ctx, args))
}

// withContextFields prepends the fields stored in ctx to args.
func withContextFields(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	if len(fields) == 0 {
		return args
	}
	out := make([]any, 0, len(fields)+len(args))
	out = append(out, fields...)
	return append(out, args...)
}
