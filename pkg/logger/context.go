package logger

import (
	"context"
	"log/slog"
)

// loggerKey is unexported so only this package can place a logger in a
// context.
type loggerKey struct{}

// With derives a request-scoped logger carrying the given fields and stores
// it in the returned context. Middleware stamps the trace id and subject UID
// once; every line logged through From below then carries them.
func With(ctx context.Context, fields ...any) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, or the process-wide one when the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
