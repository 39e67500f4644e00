package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// TokenSize256 provides 256 bits of entropy (43 chars base64url).
const TokenSize256 = 32

// GenerateToken creates a cryptographically secure random token of size bytes,
// returned base64url-encoded without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Backup codes are stored as fingerprints so they can be looked up without
// keeping the plaintext.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Digits is the charset for numeric one-time codes.
const Digits = "0123456789"

// RandomString draws length characters uniformly from charset using crypto/rand.
func RandomString(charset string, length int) (string, error) {
	if charset == "" || length <= 0 {
		return "", fmt.Errorf("invalid charset or length %d", length)
	}

	limit := big.NewInt(int64(len(charset)))
	var b strings.Builder
	b.Grow(length)
	for range length {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		b.WriteByte(charset[n.Int64()])
	}
	return b.String(), nil
}

// NumericCode returns a zero-padded decimal code of the given length.
func NumericCode(length int) (string, error) {
	return RandomString(Digits, length)
}
