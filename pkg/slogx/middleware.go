package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nexosupport/nexomfa/pkg/idx"
)

// routeParams are the path wildcards copied onto the access log line.
var routeParams = map[string]string{
	"id":      "path_id",
	"user_id": "user_id",
	"factor":  "factor",
}

// HTTPMiddleware attaches a request-scoped logger carrying req_id and writes
// one access line per request. The id is taken from X-Request-ID when present
// and echoed back on the response.
//
// The access line carries the matched route pattern rather than the raw path,
// the MFA path values (user, factor, session or range id) and anything the
// handler added with Annotate. Server errors log at error level.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = idx.New().String()
			}
			rw.Header().Set("X-Request-ID", reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
			)
			ctx, notes := withAnnotations(WithContext(r.Context(), logger))
			r = r.WithContext(ctx)

			// ServeMux records the pattern and path values on r itself.
			next.ServeHTTP(rw, r)

			attrs := []any{
				"route", route(r),
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			for param, key := range routeParams {
				if v := r.PathValue(param); v != "" {
					attrs = append(attrs, key, v)
				}
			}
			attrs = append(attrs, notes.list()...)

			level := slog.LevelInfo
			if rw.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "http_request", attrs...)
		})
	}
}

// route prefers the registered pattern so ids do not explode log cardinality.
func route(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.URL.Path
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
