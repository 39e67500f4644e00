package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
)

type Config struct {
	ServiceToken string   // Required outside dev: bearer token the login controller presents
	Issuer       string   // Optional: iss claim of MFA assertions (default: nexomfa)
	Audience     []string // Optional: aud claim of MFA assertions, comma separated (default: nexosupport)
	TOTPIssuer   string   // Optional: issuer shown in authenticator apps (default: NexoSupport)

	SigningKeyFile    string        // Optional: PEM Ed25519 key; empty means ephemeral (default: empty)
	SessionTTL        time.Duration // Optional: lifetime of a login session (default: 15m)
	AssertionTTL      time.Duration // Optional: lifetime of the signed pass assertion (default: 5m)
	LockoutThreshold  int           // Optional: failed attempts before a factor locks (default: 5)
	LockoutDuration   time.Duration // Optional: time based unlock, 0 means admin unlock only (default: 0)
	RequireEnrollment bool          // Optional: fail sessions for users with nothing set up (default: false)

	SMSCodeTTL   time.Duration // Optional: SMS code lifetime (default: 5m)
	EmailCodeTTL time.Duration // Optional: email code lifetime (default: 10m)
	CodeLength   int           // Optional: digits in SMS/email codes (default: 6)
	SendLimit    int           // Optional: codes sent per user and factor per window (default: 5)
	SendWindow   time.Duration // Optional: send limit window (default: 1h)

	RedisAddr     string // Optional: redis address for the shared send throttle
	RedisPassword string // Optional
	RedisDB       int    // Optional (default: 0)

	GatewayURL   string // Optional: JSON webhook that delivers SMS and email
	GatewayToken string // Optional: bearer token sent to the gateway

	Factors factor.Configs // Per-factor policy from MFA_FACTOR_{NAME}_*

	AuditRetention       time.Duration // Optional: audit rows older than this are purged (default: 90 days)
	DatabaseFile         string        // Optional: path to SQLite database file (default: ./mfa.db)
	PepperFile           string        // Optional: path to file containing pepper for code hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	defaults := factor.DefaultSettings()

	cfg := Config{
		ServiceToken: os.Getenv("MFA_SERVICE_TOKEN"),
		Issuer:       getEnvOrDefault("MFA_ISSUER", "nexomfa"),
		Audience:     splitList(getEnvOrDefault("MFA_AUDIENCE", "nexosupport")),
		TOTPIssuer:   getEnvOrDefault("MFA_TOTP_ISSUER", defaults.Issuer),

		SigningKeyFile:    os.Getenv("MFA_SIGNING_KEY_FILE"),
		SessionTTL:        getEnvDurationOrDefault("MFA_SESSION_TTL", service.DefaultSessionTTL),
		AssertionTTL:      getEnvDurationOrDefault("MFA_ASSERTION_TTL", 5*time.Minute),
		LockoutThreshold:  getEnvIntOrDefault("MFA_LOCKOUT_THRESHOLD", service.DefaultLockoutThreshold),
		LockoutDuration:   getEnvDurationOrDefault("MFA_LOCKOUT_DURATION", 0),
		RequireEnrollment: getEnvBoolOrDefault("MFA_REQUIRE_ENROLLMENT", false),

		SMSCodeTTL:   getEnvDurationOrDefault("MFA_SMS_CODE_TTL", defaults.SMSCodeTTL),
		EmailCodeTTL: getEnvDurationOrDefault("MFA_EMAIL_CODE_TTL", defaults.EmailCodeTTL),
		CodeLength:   getEnvIntOrDefault("MFA_CODE_LENGTH", defaults.CodeLength),
		SendLimit:    getEnvIntOrDefault("MFA_SEND_LIMIT", defaults.SendLimit),
		SendWindow:   getEnvDurationOrDefault("MFA_SEND_WINDOW", defaults.SendWindow),

		RedisAddr:     os.Getenv("MFA_REDIS_ADDR"),
		RedisPassword: os.Getenv("MFA_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("MFA_REDIS_DB", 0),

		GatewayURL:   os.Getenv("MFA_GATEWAY_URL"),
		GatewayToken: os.Getenv("MFA_GATEWAY_TOKEN"),

		Factors: loadFactorConfigs(),

		AuditRetention:       getEnvDurationOrDefault("MFA_AUDIT_RETENTION", 90*24*time.Hour),
		DatabaseFile:         getEnvOrDefault("MFA_DATABASE_FILE", "mfa.db"),
		PepperFile:           getEnvOrDefault("MFA_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

// Validate rejects configurations the service cannot run safely with.
func (c Config) Validate() error {
	if c.ServiceToken == "" && c.Env != "dev" {
		return errors.New("MFA_SERVICE_TOKEN is required outside dev")
	}
	if len(c.Audience) == 0 {
		return errors.New("MFA_AUDIENCE must name at least one audience")
	}
	if c.LockoutThreshold < 1 {
		return errors.New("MFA_LOCKOUT_THRESHOLD must be positive")
	}
	if c.CodeLength < 4 || c.CodeLength > 10 {
		return errors.New("MFA_CODE_LENGTH must be between 4 and 10")
	}
	return nil
}

// Settings projects the factor tunables.
func (c Config) Settings() factor.Settings {
	return factor.Settings{
		Issuer:       c.TOTPIssuer,
		SMSCodeTTL:   c.SMSCodeTTL,
		EmailCodeTTL: c.EmailCodeTTL,
		CodeLength:   c.CodeLength,
		SendLimit:    c.SendLimit,
		SendWindow:   c.SendWindow,
	}
}

// loadFactorConfigs overlays MFA_FACTOR_{NAME}_{ENABLED,WEIGHT,REQUIRED,SUFFICIENT}
// on the built-in defaults. BACKUPCODES names the backup codes factor.
func loadFactorConfigs() factor.Configs {
	configs := factor.DefaultConfigs()
	for _, name := range factor.Names {
		prefix := "MFA_FACTOR_" + strings.ToUpper(name) + "_"
		c := configs[name]
		c.Enabled = getEnvBoolOrDefault(prefix+"ENABLED", c.Enabled)
		c.Weight = getEnvIntOrDefault(prefix+"WEIGHT", c.Weight)
		c.Required = getEnvBoolOrDefault(prefix+"REQUIRED", c.Required)
		c.Sufficient = getEnvBoolOrDefault(prefix+"SUFFICIENT", c.Sufficient)
		configs[name] = c
	}
	return configs
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
