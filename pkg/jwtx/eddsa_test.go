package jwtx_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://mfa.nexosupport.test"

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(kid, priv)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newSigner(t, "test-key-eddsa")
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "test-key-eddsa", signer.KID())

	claims := jwtx.NewAssertionClaims(
		"user-456",
		"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZZ",
		[]string{"sms", "totp"},
		jwtx.DefaultAssertionTTL,
		exampleIssuer,
		[]string{"portal"},
		time.Now().UTC(),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)

	parsed, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, []string{"portal"}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-456", parsed.Subject)
	require.Equal(t, claims.SID, parsed.SID)
	require.Equal(t, []string{"mfa", "sms", "totp"}, parsed.AMR)
	require.NotEmpty(t, parsed.ID)
}

func TestEdDSADefaultKIDIsThumbprint(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("", priv)
	require.NoError(t, err)
	require.Equal(t, jwtx.Thumbprint(priv.Public().(ed25519.PublicKey)), signer.KID())
}

func TestEdDSARejectsBadKeySize(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("k", ed25519.PrivateKey([]byte("short")))
	require.Error(t, err)
}

func TestEdDSAVerifyFailures(t *testing.T) {
	signer := newSigner(t, "k1")
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	now := time.Now().UTC()
	sign := func(c jwtx.Claims) string {
		tok, err := signer.Sign(c)
		require.NoError(t, err)
		return tok
	}

	t.Run("wrong issuer", func(t *testing.T) {
		tok := sign(jwtx.NewAssertionClaims("u", "s", nil, time.Minute, "other", nil, now))
		_, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		tok := sign(jwtx.NewAssertionClaims("u", "s", nil, time.Minute, exampleIssuer, []string{"a"}, now))
		_, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, []string{"b"}).Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("expired", func(t *testing.T) {
		tok := sign(jwtx.NewAssertionClaims("u", "s", nil, time.Minute, exampleIssuer, nil, now.Add(-time.Hour)))
		_, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(tok)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("unknown kid", func(t *testing.T) {
		other := newSigner(t, "k2")
		tok, err := other.Sign(jwtx.NewAssertionClaims("u", "s", nil, time.Minute, exampleIssuer, nil, now))
		require.NoError(t, err)
		_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrNoKey)
	})

	t.Run("missing mfa method", func(t *testing.T) {
		c := jwtx.NewAssertionClaims("u", "s", nil, time.Minute, exampleIssuer, nil, now)
		c.AMR = []string{"pwd"}
		_, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(sign(c))
		require.ErrorIs(t, err, jwtx.ErrNotMFA)
	})

	t.Run("tampered", func(t *testing.T) {
		tok := sign(jwtx.NewAssertionClaims("u", "s", nil, time.Minute, exampleIssuer, nil, now))
		_, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(tok[:len(tok)-2] + "AA")
		require.Error(t, err)
	})
}
