package factor

import (
	"log/slog"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/notify"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/internal/mfa/throttle"
)

// Config is the per-factor policy. Lower weights are offered first.
type Config struct {
	Enabled    bool
	Weight     int
	Required   bool
	Sufficient bool
}

// Configs maps factor names to their Config.
type Configs map[string]Config

// Names lists the built-in factors in registration order.
var Names = []string{
	domain.FactorIPRange,
	domain.FactorSMS,
	domain.FactorEmail,
	domain.FactorTOTP,
	domain.FactorBackupCodes,
}

// DefaultConfigs enables every built-in factor at the default weight. Only
// backup codes are sufficient on their own.
func DefaultConfigs() Configs {
	out := make(Configs, len(Names))
	for _, n := range Names {
		out[n] = Config{
			Enabled:    true,
			Weight:     domain.DefaultWeight,
			Required:   n != domain.FactorBackupCodes,
			Sufficient: n == domain.FactorBackupCodes,
		}
	}
	return out
}

// Get returns the config for name, or a disabled default.
func (c Configs) Get(name string) Config {
	if cfg, ok := c[name]; ok {
		return cfg
	}
	return Config{Weight: domain.DefaultWeight, Required: true}
}

// Settings are the tunables shared by the built-in factors.
type Settings struct {
	Issuer       string
	SMSCodeTTL   time.Duration
	EmailCodeTTL time.Duration
	CodeLength   int
	SendLimit    int
	SendWindow   time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Issuer:       "NexoSupport",
		SMSCodeTTL:   5 * time.Minute,
		EmailCodeTTL: 10 * time.Minute,
		CodeLength:   6,
		SendLimit:    5,
		SendWindow:   time.Hour,
	}
}

// Deps is what builders receive. Gateways may be nil; a factor that needs
// a missing gateway fails to load.
type Deps struct {
	Store    store.Store
	SMS      notify.Sender
	Email    notify.Sender
	Limiter  throttle.Limiter
	Settings Settings
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	def := DefaultSettings()
	if d.Settings.Issuer == "" {
		d.Settings.Issuer = def.Issuer
	}
	if d.Settings.SMSCodeTTL <= 0 {
		d.Settings.SMSCodeTTL = def.SMSCodeTTL
	}
	if d.Settings.EmailCodeTTL <= 0 {
		d.Settings.EmailCodeTTL = def.EmailCodeTTL
	}
	if d.Settings.CodeLength <= 0 {
		d.Settings.CodeLength = def.CodeLength
	}
	if d.Settings.SendLimit <= 0 {
		d.Settings.SendLimit = def.SendLimit
	}
	if d.Settings.SendWindow <= 0 {
		d.Settings.SendWindow = def.SendWindow
	}
	if d.Limiter == nil {
		d.Limiter = throttle.NewMemoryLimiter(d.Settings.SendLimit, d.Settings.SendWindow)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}
