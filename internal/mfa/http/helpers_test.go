package http_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	mfahttp "github.com/nexosupport/nexomfa/internal/mfa/http"
	"github.com/nexosupport/nexomfa/internal/mfa/notify"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/internal/mfa/store/drivers/sqlite"
	"github.com/nexosupport/nexomfa/pkg/cryptox"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "portal-service-token"
	testIssuer   = "nexomfa-test"
	testAudience = "nexosupport"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test")
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

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type fixture struct {
	clock  *clock
	sms    *recordingSender
	email  *recordingSender
	server *httptest.Server
	client *mfasdk.Client
	router *mfahttp.Router
}

// newFixture serves a fully wired router over httptest. The clock starts a
// minute in the past so tests can advance it without issuing assertions
// that are not yet valid.
func newFixture(t *testing.T, configure func(r *mfahttp.Router)) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "mfa.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	fx := &fixture{
		clock: &clock{t: time.Now().UTC().Truncate(time.Second).Add(-time.Minute)},
		sms:   &recordingSender{},
		email: &recordingSender{},
	}

	registry := factor.NewDefaultRegistry(factor.Deps{
		Store: s,
		SMS:   fx.sms,
		Email: fx.email,
		Now:   fx.clock.Now,
	}, factor.DefaultConfigs())
	_, loadErrs := registry.Discover()
	require.Empty(t, loadErrs)

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("", priv)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := mfahttp.NewRouter(keys, testToken, "test", s, logger)
	r.Registry = registry
	r.LoginService = &service.LoginService{
		Store:            s,
		Registry:         registry,
		Signer:           signer,
		Issuer:           testIssuer,
		Audience:         []string{testAudience},
		LockoutThreshold: 5,
		Now:              fx.clock.Now,
	}
	r.EnrollmentService = &service.EnrollmentService{Store: s, Registry: registry, Now: fx.clock.Now}
	r.IPRangeService = &service.IPRangeService{Store: s, Now: fx.clock.Now}
	if configure != nil {
		configure(r)
	}
	r.ApplyRoutes()

	fx.router = r
	fx.server = httptest.NewServer(r)
	t.Cleanup(fx.server.Close)
	fx.client = mfasdk.NewClient(fx.server.URL, testToken)
	return fx
}

// requireAPIError asserts err is an *APIError with the given code and status.
func requireAPIError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)

	var apiErr *mfasdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *mfasdk.APIError, got %T: %v", err, err)
	require.Equal(t, code, apiErr.Code, apiErr.Description)
	require.Equal(t, status, apiErr.StatusCode)
}
