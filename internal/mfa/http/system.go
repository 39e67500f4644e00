package http

import (
	"net/http"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/pkg/httpx"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version. Always 200 OK while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	mfasdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, mfasdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database, the assertion signer and, when configured, the redis send throttle.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	mfasdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	mfasdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
	throttle Pinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &mfasdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if throttle != nil {
			checks.Throttle = "ok"
			if err := throttle.Ping(r.Context()); err != nil {
				checks.Throttle = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, mfasdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// JWKSHandler exposes the keys that verify session assertions.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify MFA assertions.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	mfasdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, mfasdk.JWKSResponse(keys.PublicJWKS()))
	}
}
