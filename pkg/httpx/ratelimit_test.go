package httpx_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexosupport/nexomfa/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestClientIP(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.ClientIP(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ClientIP(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.ClientIP(req))
	})

	t.Run("returns RemoteAddr verbatim without port", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9"
		require.Equal(t, "10.0.0.9", httpx.ClientIP(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	mux := http.NewServeMux()
	var got string
	mux.HandleFunc("GET /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		got = httpx.CompositeKeyExtractor(":",
			httpx.PathValueKeyExtractor("id"),
			httpx.IPKeyExtractor,
			httpx.CallerKeyExtractor,
		)(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/abc", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	mux.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "abc:192.168.1.1", got, "empty caller is skipped")
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 5, Window: time.Second, Burst: 5,
		}, httpx.IPKeyExtractor)(okHandler())

		for i := range 5 {
			require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:1"), "request %d", i+1)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 3, Window: time.Minute, Burst: 3,
		}, httpx.IPKeyExtractor)(okHandler())

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:1"))
		}
		require.Equal(t, http.StatusTooManyRequests, serve(h, "192.168.1.1:1"))
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 2, Window: time.Minute, Burst: 2,
		})(okHandler())

		for range 2 {
			require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:1"))
		}
		require.Equal(t, http.StatusTooManyRequests, serve(h, "192.168.1.1:1"))
		require.Equal(t, http.StatusOK, serve(h, "192.168.1.2:1"))
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
		}, func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:1"))
		}
	})
}

func TestRateLimitByPathValue(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /sessions/{id}/verify", httpx.RateLimitByPathValue(httpx.RateLimitConfig{
		RequestsPerWindow: 2, Window: time.Minute, Burst: 2,
	}, "id")(okHandler()))

	post := func(id string) int {
		req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/verify", nil)
		req.RemoteAddr = "192.168.1.1:1"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, post("s1"))
	require.Equal(t, http.StatusOK, post("s1"))
	require.Equal(t, http.StatusTooManyRequests, post("s1"))
	require.Equal(t, http.StatusOK, post("s2"))
}

func TestRateLimitHeaders(t *testing.T) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
	})(okHandler())

	require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:1"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitProfiles(t *testing.T) {
	profiles := map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
		"public":   httpx.PublicLimit,
	}
	for name, cfg := range profiles {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, cfg.RequestsPerWindow)
			require.Positive(t, cfg.Window)
			require.Positive(t, cfg.Burst)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("no env vars uses defaults", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})

	t.Run("overrides all parameters", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "200")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TEST_BURST", "250")

		cfg := httpx.ParseRateLimitFromEnv("TEST", def)
		require.Equal(t, 200, cfg.RequestsPerWindow)
		require.Equal(t, 30*time.Second, cfg.Window)
		require.Equal(t, 250, cfg.Burst)
	})

	t.Run("invalid values use defaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "invalid")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "-10")
		t.Setenv("RATELIMIT_TEST_BURST", "0")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000,
	})(okHandler())

	for i := 0; b.Loop(); i++ {
		serve(h, fmt.Sprintf("192.168.%d.%d:12345", i%255, (i/255)%255))
	}
}
