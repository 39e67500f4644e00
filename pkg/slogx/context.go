package slogx

import (
	"context"
	"log/slog"
	"sync"
)

type (
	ctxKey      struct{}
	annotations struct {
		mu    sync.Mutex
		attrs []any
	}
	annotationsKey struct{}
)

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request-scoped logger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// With returns ctx carrying the context logger extended with args.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// Annotate adds args to the access log line HTTPMiddleware writes once the
// request finishes. Handlers use it for facts only known after parsing the
// body, like the user a session was started for or a verification outcome.
// Outside HTTPMiddleware it is a no-op.
func Annotate(ctx context.Context, args ...any) {
	a, ok := ctx.Value(annotationsKey{}).(*annotations)
	if !ok {
		return
	}
	a.mu.Lock()
	a.attrs = append(a.attrs, args...)
	a.mu.Unlock()
}

func withAnnotations(ctx context.Context) (context.Context, *annotations) {
	a := &annotations{}
	return context.WithValue(ctx, annotationsKey{}, a), a
}

func (a *annotations) list() []any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attrs
}
