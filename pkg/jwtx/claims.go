package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAssertionTTL is how long an MFA assertion stays valid for the
// relying login controller to exchange it.
const DefaultAssertionTTL = 5 * time.Minute

// Claims are the claims of an MFA assertion: proof that Subject completed
// second-factor verification in session SID.
type Claims struct {
	jwt.RegisteredClaims

	// Verification session id.
	SID string `json:"sid,omitempty"`

	// Authentication Methods Reference, always led by "mfa" followed by the
	// factors that passed, e.g. ["mfa","sms","totp"].
	AMR []string `json:"amr,omitempty"`
}

// NewAssertionClaims builds the claims for a satisfied verification session.
func NewAssertionClaims(
	subject, sid string,
	factors []string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	amr := make([]string, 0, len(factors)+1)
	amr = append(amr, "mfa")
	amr = append(amr, factors...)

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID: sid,
		AMR: amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// HasMethod reports whether m appears in the amr claim.
func (c *Claims) HasMethod(m string) bool {
	return slices.Contains(c.AMR, m)
}
