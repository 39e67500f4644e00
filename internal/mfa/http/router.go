package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/pkg/httpx"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/nexosupport/nexomfa/pkg/slogx"

	_ "github.com/nexosupport/nexomfa/api/mfa" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// CallerPortal is recorded as the caller of every service-token request.
const CallerPortal = "portal"

// Pinger is implemented by optional dependencies that readyz should check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	serviceToken string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	Registry          *factor.Registry
	LoginService      *service.LoginService
	EnrollmentService *service.EnrollmentService
	IPRangeService    *service.IPRangeService

	// Throttle is checked by readyz when the send limiter lives outside the
	// process (redis). Optional.
	Throttle Pinger
}

func NewRouter(
	keys *jwtx.KeySet,
	serviceToken, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		serviceToken: serviceToken,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerFactors()
	r.registerSessions()
	r.registerUsers()
	r.registerIPRanges()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			NexoSupport MFA Service API
//	@version		0.1.0
//	@description	Second-factor verification for the NexoSupport portal. The portal starts a session once the
//	@description	password was accepted, asks for the next factor, submits what the user typed and receives an
//	@description	EdDSA signed assertion when the session is satisfied. Verify it with the JWKS endpoint.
//
//	@contact.name				NexoSupport Team
//	@contact.url				https://github.com/nexosupport/nexomfa
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	ServiceToken
//	@in							header
//	@name						Authorization
//	@description				Shared service token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with the service token check and a per-caller limit.
func (r *Router) secured(h http.HandlerFunc, mws ...httpx.Middleware) http.Handler {
	chain := []httpx.Middleware{
		httpx.ServiceTokenMiddleware(r.serviceToken, CallerPortal),
		httpx.RateLimitMiddleware(httpx.LenientLimit, httpx.CallerKeyExtractor),
	}
	return httpx.Chain(h, append(chain, mws...)...)
}

func (r *Router) registerFactors() {
	h := &FactorsHandler{Registry: r.Registry}

	r.Mux.Handle("GET /v1/factors", r.secured(h.HandleList))
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{LoginService: r.LoginService}

	r.Mux.Handle("POST /v1/sessions", r.secured(h.HandleStart))
	r.Mux.Handle("GET /v1/sessions/{id}", r.secured(h.HandleGet))
	r.Mux.Handle("GET /v1/sessions/{id}/next", r.secured(h.HandleNext))

	// Code submission and resend are limited per session on top of the
	// lock counter so a single login cannot hammer the code store.
	r.Mux.Handle("POST /v1/sessions/{id}/verify",
		r.secured(h.HandleVerify, httpx.RateLimitByPathValue(httpx.StrictLimit, "id")),
	)
	r.Mux.Handle("POST /v1/sessions/{id}/factors/{factor}/resend",
		r.secured(h.HandleResend, httpx.RateLimitByPathValue(httpx.StrictLimit, "id")),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{EnrollmentService: r.EnrollmentService}
	perUser := httpx.RateLimitByPathValue(httpx.ModerateLimit, "user_id")

	r.Mux.Handle("GET /v1/users/{user_id}/factors", r.secured(h.HandleList))
	r.Mux.Handle("DELETE /v1/users/{user_id}/factors/{factor}", r.secured(h.HandleRevoke, perUser))
	r.Mux.Handle("POST /v1/users/{user_id}/factors/{factor}/unlock", r.secured(h.HandleUnlock, perUser))

	r.Mux.Handle("POST /v1/users/{user_id}/factors/totp", r.secured(h.HandleBeginTOTP, perUser))
	r.Mux.Handle("POST /v1/users/{user_id}/factors/totp/confirm",
		r.secured(h.HandleConfirmTOTP, httpx.RateLimitByPathValue(httpx.StrictLimit, "user_id")),
	)
	r.Mux.Handle("PUT /v1/users/{user_id}/factors/sms", r.secured(h.HandleSetPhone, perUser))
	r.Mux.Handle("PUT /v1/users/{user_id}/factors/email", r.secured(h.HandleSetEmail, perUser))
	r.Mux.Handle("POST /v1/users/{user_id}/factors/backupcodes", r.secured(h.HandleRegenerateBackupCodes, perUser))

	r.Mux.Handle("GET /v1/users/{user_id}/audit", r.secured(h.HandleAudit))
}

func (r *Router) registerIPRanges() {
	h := &IPRangesHandler{IPRangeService: r.IPRangeService}

	r.Mux.Handle("GET /v1/ipranges", r.secured(h.HandleList))
	r.Mux.Handle("POST /v1/ipranges", r.secured(h.HandleCreate))
	r.Mux.Handle("DELETE /v1/ipranges/{id}", r.secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.Throttle),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
