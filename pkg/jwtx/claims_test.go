package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewAssertionClaims(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	c := jwtx.NewAssertionClaims("u1", "sid1", []string{"backupcodes"}, 2*time.Minute, "iss", []string{"aud"}, now)

	require.Equal(t, []string{"mfa", "backupcodes"}, c.AMR)
	require.Equal(t, now.Add(2*time.Minute), c.ExpiresAt.Time)
	require.Equal(t, now, c.IssuedAt.Time)
	require.True(t, c.HasMethod("mfa"))
	require.False(t, c.HasMethod("pwd"))
	require.NotEqual(t, c.ID, jwtx.NewJTI())
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "mfa"}}

	require.NoError(t, c.ValidateIssuer("mfa"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("auth"), jwtx.ErrIssuer)
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"portal", "admin"}}}

	require.NoError(t, c.ValidateAudience([]string{"portal"}))
	require.NoError(t, c.ValidateAudience([]string{"x", "admin"}))
	require.NoError(t, c.ValidateAudience(nil))
	require.ErrorIs(t, c.ValidateAudience([]string{"other"}), jwtx.ErrAudience)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	valid := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
	}}
	require.NoError(t, valid.ValidateExpiry())

	expired := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}}
	require.ErrorIs(t, expired.ValidateExpiry(), jwtx.ErrExpired)

	early := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
	}}
	require.ErrorIs(t, early.ValidateExpiry(), jwtx.ErrNotYetValid)
}
