package httpx

import "context"

type ctxKey string

const (
	// CtxKeyCaller holds the name of the authenticated calling service.
	CtxKeyCaller ctxKey = "caller"
)

// CallerFromContext returns the calling service name set by ServiceTokenMiddleware.
func CallerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyCaller).(string); ok {
		return v
	}
	return ""
}

func contextWithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, CtxKeyCaller, caller)
}
