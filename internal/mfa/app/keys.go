package app

import (
	"fmt"
	"log/slog"

	"github.com/nexosupport/nexomfa/pkg/cryptox"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
)

// InitSigningKeys loads the Ed25519 key used to sign MFA assertions and
// publishes it in a KeySet for the JWKS endpoint.
//
// Without MFA_SIGNING_KEY_FILE the key is ephemeral and assertions issued
// before a restart can no longer be verified. That is acceptable because
// assertions live for minutes.
func InitSigningKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, error) {
	priv, err := cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA("", priv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, fmt.Errorf("failed to publish signing key: %w", err)
	}

	mode := "persistent"
	if cfg.SigningKeyFile == "" {
		mode = "ephemeral"
	}
	logger.Info("assertion signing key ready",
		"alg", signer.Alg(),
		"kid", signer.KID(),
		"mode", mode,
	)

	return signer, keys, nil
}
