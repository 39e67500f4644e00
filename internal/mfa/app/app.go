package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	httpapi "github.com/nexosupport/nexomfa/internal/mfa/http"
	"github.com/nexosupport/nexomfa/internal/mfa/notify"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/internal/mfa/store/drivers/sqlite"
	"github.com/nexosupport/nexomfa/internal/mfa/throttle"
	"github.com/nexosupport/nexomfa/pkg/cryptox"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/nexosupport/nexomfa/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the MFA service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	signer  jwtx.Signer
	keys    *jwtx.KeySet
	redis   *redis.Client // nil unless MFA_REDIS_ADDR is set
	limiter throttle.Limiter

	// Services
	registry            *factor.Registry
	loginService        *service.LoginService
	enrollmentService   *service.EnrollmentService
	ipRangeService      *service.IPRangeService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "mfa-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if app.cfg.ServiceToken == "" {
		token, err := cryptox.GenerateToken(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate service token: %w", err)
		}
		app.cfg.ServiceToken = token
		app.logger.Warn("MFA_SERVICE_TOKEN not set, generated a dev token", "token", token)
	}

	// Pepper for one-time code hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, keys, err := InitSigningKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.signer = signer
	app.keys = keys

	if err := app.initThrottle(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("mfa service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down mfa service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("mfa service stopped")
	return nil
}

// Handler exposes the router, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initThrottle picks the send limiter: redis when configured so limits hold
// across replicas, otherwise in process.
func (app *Application) initThrottle() error {
	if app.cfg.RedisAddr == "" {
		app.limiter = throttle.NewMemoryLimiter(app.cfg.SendLimit, app.cfg.SendWindow)
		app.logger.Info("send throttle ready", "backend", "memory")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = client
	app.limiter = throttle.NewRedisLimiter(client, app.cfg.SendLimit, app.cfg.SendWindow)
	app.logger.Info("send throttle ready", "backend", "redis", "addr", app.cfg.RedisAddr)
	return nil
}

// gateways returns the SMS and email senders. Without a gateway URL, dev
// logs messages and other environments leave delivery factors unloaded.
func (app *Application) gateways() (sms, email notify.Sender) {
	switch {
	case app.cfg.GatewayURL != "":
		webhook := notify.NewWebhookSender(
			app.cfg.GatewayURL,
			app.cfg.GatewayToken,
			&http.Client{Timeout: 10 * time.Second},
		)
		return webhook, webhook
	case app.cfg.Env == "dev":
		logSender := notify.LogSender{Logger: app.logger}
		return logSender, logSender
	default:
		return nil, nil
	}
}

// initServices builds the factor registry and business logic services
func (app *Application) initServices() {
	sms, email := app.gateways()

	app.registry = factor.NewDefaultRegistry(factor.Deps{
		Store:    app.db,
		SMS:      sms,
		Email:    email,
		Limiter:  app.limiter,
		Settings: app.cfg.Settings(),
		Logger:   app.logger,
	}, app.cfg.Factors)

	_, loadErrs := app.registry.Discover()
	for _, le := range loadErrs {
		app.logger.Warn("factor not loaded", "factor", le.Name, "error", le.Err)
	}
	var enabled []string
	for _, f := range app.registry.Enabled() {
		enabled = append(enabled, f.Name())
	}
	app.logger.Info("factors discovered", "enabled", enabled, "has_input", app.registry.HasInputFactors())

	app.loginService = &service.LoginService{
		Store:             app.db,
		Registry:          app.registry,
		Signer:            app.signer,
		Issuer:            app.cfg.Issuer,
		Audience:          app.cfg.Audience,
		SessionTTL:        app.cfg.SessionTTL,
		AssertionTTL:      app.cfg.AssertionTTL,
		LockoutThreshold:  app.cfg.LockoutThreshold,
		LockoutDuration:   app.cfg.LockoutDuration,
		RequireEnrollment: app.cfg.RequireEnrollment,
	}
	app.enrollmentService = &service.EnrollmentService{
		Store:           app.db,
		Registry:        app.registry,
		LockoutDuration: app.cfg.LockoutDuration,
	}
	app.ipRangeService = &service.IPRangeService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.AuditRetention = app.cfg.AuditRetention
	app.housekeepingService.LockoutDuration = app.cfg.LockoutDuration
	if sweeper, ok := app.limiter.(service.Sweeper); ok {
		app.housekeepingService.Sweepers = append(app.housekeepingService.Sweepers, sweeper)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.cfg.ServiceToken,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Registry = app.registry
	router.LoginService = app.loginService
	router.EnrollmentService = app.enrollmentService
	router.IPRangeService = app.ipRangeService
	if pinger, ok := app.limiter.(httpapi.Pinger); ok {
		router.Throttle = pinger
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
