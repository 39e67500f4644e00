package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// GenerateEd25519Key generates a new Ed25519 private key in PKCS8 PEM form.
func GenerateEd25519Key() ([]byte, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ParseEd25519Key decodes a PKCS8 PEM Ed25519 private key.
func ParseEd25519Key(pemBytes []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("cryptox: no PEM block found")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: parse PKCS8 key: %w", err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("cryptox: expected Ed25519 key, got %T", key)
	}
	return priv, nil
}

// LoadOrGenerateEd25519Key reads the signing key at path, creating it when the
// file does not exist. An empty path yields an ephemeral key.
func LoadOrGenerateEd25519Key(path string) (ed25519.PrivateKey, error) {
	if path == "" {
		pemBytes, err := GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		return ParseEd25519Key(pemBytes)
	}

	path = filepath.Clean(path)
	pemBytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if pemBytes, err = GenerateEd25519Key(); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("cryptox: create key dir: %w", err)
		}
		if err := os.WriteFile(path, pemBytes, 0600); err != nil {
			return nil, fmt.Errorf("cryptox: write key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("cryptox: read key: %w", err)
	}
	return ParseEd25519Key(pemBytes)
}
