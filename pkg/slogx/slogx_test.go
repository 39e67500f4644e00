package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nexosupport/nexomfa/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware_InjectsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slogx.New(slogx.Config{Service: "nexomfa", Env: "test", Level: "debug", Output: &buf})

	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slogx.FromContext(r.Context()).Debug("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inside, access map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &access))

	require.Equal(t, "req-123", inside["req_id"])
	require.Equal(t, "http_request", access["msg"])
	require.EqualValues(t, http.StatusTeapot, access["status"])
	require.Equal(t, "nexomfa", access["service"])
}

func TestHTTPMiddleware_GeneratesRequestID(t *testing.T) {
	base := slogx.New(slogx.Config{Output: &bytes.Buffer{}})
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, rec.Header().Get("X-Request-ID"), 26)
}

func accessLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	require.Equal(t, "http_request", m["msg"])
	return m
}

func TestHTTPMiddleware_LogsRouteAndAnnotations(t *testing.T) {
	var buf bytes.Buffer
	base := slogx.New(slogx.Config{Service: "nexomfa", Env: "test", Output: &buf})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/users/{user_id}/factors/{factor}/unlock", func(w http.ResponseWriter, r *http.Request) {
		slogx.Annotate(r.Context(), "outcome", "pass")
		w.WriteHeader(http.StatusNoContent)
	})
	h := slogx.HTTPMiddleware(base)(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/users/u42/factors/sms/unlock", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	access := accessLine(t, &buf)
	require.Equal(t, "POST /v1/users/{user_id}/factors/{factor}/unlock", access["route"])
	require.Equal(t, "u42", access["user_id"])
	require.Equal(t, "sms", access["factor"])
	require.Equal(t, "pass", access["outcome"])
	require.Equal(t, "INFO", access["level"])
	require.NotContains(t, access, "path_id")
}

func TestHTTPMiddleware_ServerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	base := slogx.New(slogx.Config{Output: &buf})
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sessions/abc", nil))

	access := accessLine(t, &buf)
	require.Equal(t, "ERROR", access["level"])
	require.Equal(t, "/v1/sessions/abc", access["route"], "unmatched requests fall back to the path")
}

func TestAnnotate_OutsideMiddlewareIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		slogx.Annotate(context.Background(), "user_id", "u1")
	})
}

func TestNew_RedactsSecretsOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Env: "prod", Output: &buf})
	logger.Info("code issued", "code", "123456", "user_id", "u1")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "[REDACTED]", m["code"])
	require.Equal(t, "u1", m["user_id"])

	buf.Reset()
	logger = slogx.New(slogx.Config{Env: "dev", Output: &buf})
	logger.Info("code issued", "code", "123456")
	require.Contains(t, buf.String(), "123456")
}
