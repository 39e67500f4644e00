package service_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/notify"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/internal/mfa/store/drivers/sqlite"
	"github.com/nexosupport/nexomfa/pkg/cryptox"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "nexomfa-test"
	testAudience = "nexosupport"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

var codeInBody = regexp.MustCompile(`\b(\d{6})\b`)

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.msgs)
	m := codeInBody.FindStringSubmatch(s.msgs[len(s.msgs)-1].Body)
	require.Len(t, m, 2)
	return m[1]
}

// countingFactor always fails and counts how often it was consulted.
type countingFactor struct {
	calls atomic.Int32
}

func (c *countingFactor) Name() string     { return "counter" }
func (c *countingFactor) Enabled() bool    { return true }
func (c *countingFactor) Weight() int      { return 50 }
func (c *countingFactor) HasInput() bool   { return true }
func (c *countingFactor) Required() bool   { return true }
func (c *countingFactor) Sufficient() bool { return false }

func (c *countingFactor) Descriptor() domain.FactorDescriptor {
	return domain.FactorDescriptor{Name: c.Name(), Enabled: true, Weight: 50, HasInput: true, Required: true}
}

func (c *countingFactor) HasSetup(context.Context, string) (bool, error) { return true, nil }

func (c *countingFactor) PossibleStates(context.Context, string) ([]domain.State, error) {
	return []domain.State{domain.StatePass, domain.StateFail, domain.StateLocked}, nil
}

func (c *countingFactor) Verify(context.Context, factor.Request) (domain.Outcome, error) {
	c.calls.Add(1)
	return domain.OutcomeFail, nil
}

type fixture struct {
	store    *sqlite.Store
	clock    *clock
	sms      *recordingSender
	email    *recordingSender
	registry *factor.Registry
	signer   *jwtx.EdDSASigner
	login    *service.LoginService
	enroll   *service.EnrollmentService
}

type fixtureOpts struct {
	configs  factor.Configs
	start    time.Time
	register func(r *factor.Registry)
	deps     func(d *factor.Deps)
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "mfa.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	start := opts.start
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Second)
	}
	fx := &fixture{
		store: s,
		clock: &clock{t: start},
		sms:   &recordingSender{},
		email: &recordingSender{},
	}

	deps := factor.Deps{Store: s, SMS: fx.sms, Email: fx.email, Now: fx.clock.Now}
	if opts.deps != nil {
		opts.deps(&deps)
	}
	cfgs := opts.configs
	if cfgs == nil {
		cfgs = factor.DefaultConfigs()
	}
	if opts.register != nil {
		fx.registry = factor.NewRegistry(deps, cfgs)
		opts.register(fx.registry)
	} else {
		fx.registry = factor.NewDefaultRegistry(deps, cfgs)
	}
	_, loadErrs := fx.registry.Discover()
	require.Empty(t, loadErrs)

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	fx.signer, err = jwtx.NewSignerEdDSA("", priv)
	require.NoError(t, err)

	fx.login = &service.LoginService{
		Store:            s,
		Registry:         fx.registry,
		Signer:           fx.signer,
		Issuer:           testIssuer,
		Audience:         []string{testAudience},
		LockoutThreshold: 5,
		Now:              fx.clock.Now,
	}
	fx.enroll = &service.EnrollmentService{
		Store:    s,
		Registry: fx.registry,
		Now:      fx.clock.Now,
	}
	return fx
}

func (fx *fixture) verifier(t *testing.T) *jwtx.EdDSAVerifier {
	t.Helper()
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(fx.signer))
	return jwtx.NewVerifierEdDSA(keys, testIssuer, []string{testAudience})
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
