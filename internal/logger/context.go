package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// Into returns a copy of ctx that carries log.
func Into(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// From returns the logger carried by ctx, or a no-op logger.
func From(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && log != nil {
		return log
	}
	return zap.NewNop()
}

// Stage names the carried logger after a pipeline stage and returns both the
// derived context and the named logger.
func Stage(ctx context.Context, name string, fields ...zap.Field) (context.Context, *zap.Logger) {
	log := From(ctx).Named(name).With(fields...)
	return Into(ctx, log), log
}
