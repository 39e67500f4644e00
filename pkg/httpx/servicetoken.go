package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/nexosupport/nexomfa/pkg/slogx"
)

// ServiceTokenMiddleware authenticates backend callers with a static bearer
// token. Requests without a matching token get a 401 with an RFC 6750
// WWW-Authenticate challenge. caller is recorded in the request context.
func ServiceTokenMiddleware(token, caller string) Middleware {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			got := []byte(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")))

			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				slogx.FromContext(r.Context()).Warn("service token rejected")
				writeBearerError(w, "invalid service token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithCaller(r.Context(), caller)))
		})
	}
}

func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
