package factor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/pkg/cryptox"
	"github.com/nexosupport/nexomfa/pkg/idx"
)

const (
	BackupCodeCount   = 10
	BackupCodeLength  = 8
	BackupCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// BackupCodes is the single-use recovery code factor. Codes are stored as
// SHA-256 fingerprints of their normalised form.
type BackupCodes struct {
	base
	deps Deps
}

// NewBackupCodes builds the backup code factor.
func NewBackupCodes(deps Deps, cfg Config) (Factor, error) {
	return &BackupCodes{
		base: base{name: domain.FactorBackupCodes, cfg: cfg, hasInput: true},
		deps: deps,
	}, nil
}

// NormalizeBackupCode strips spaces and dashes and upper-cases the rest.
func NormalizeBackupCode(code string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", "-", "", "\t", "").Replace(code))
}

// FormatBackupCode renders a raw code as XXXX-XXXX.
func FormatBackupCode(code string) string {
	if len(code) != BackupCodeLength {
		return code
	}
	return code[:4] + "-" + code[4:]
}

func (f *BackupCodes) Remaining(ctx context.Context, userID string) (int, error) {
	return f.deps.Store.BackupCodes().CountUnusedBackupCodes(ctx, userID)
}

func (f *BackupCodes) HasSetup(ctx context.Context, userID string) (bool, error) {
	n, err := f.Remaining(ctx, userID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (f *BackupCodes) PossibleStates(ctx context.Context, userID string) ([]domain.State, error) {
	ok, err := f.HasSetup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return interactiveStates(ok), nil
}

func (f *BackupCodes) Verify(ctx context.Context, req Request) (domain.Outcome, error) {
	ok, err := f.HasSetup(ctx, req.UserID)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.OutcomeNotApplicable, nil
	}

	code := NormalizeBackupCode(req.Code)
	if code == "" {
		return domain.OutcomeFail, nil
	}

	used, err := f.deps.Store.BackupCodes().ConsumeBackupCode(ctx, req.UserID, cryptox.FingerprintToken(code), f.deps.Now())
	if err != nil {
		return "", fmt.Errorf("consume backup code: %w", err)
	}
	if !used {
		return domain.OutcomeFail, nil
	}
	return domain.OutcomePass, nil
}

// Generate replaces the user's codes with a fresh batch and returns them
// formatted for display. This is the only time the plaintext exists.
func (f *BackupCodes) Generate(ctx context.Context, userID string) ([]string, error) {
	raw := make([]string, BackupCodeCount)
	for i := range raw {
		c, err := cryptox.RandomString(BackupCodeCharset, BackupCodeLength)
		if err != nil {
			return nil, err
		}
		raw[i] = c
	}

	now := f.deps.Now()
	err := f.deps.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return fmt.Errorf("delete backup codes: %w", err)
		}
		for _, c := range raw {
			err := tx.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
				ID:        idx.NewAt(now).String(),
				UserID:    userID,
				CodeHash:  cryptox.FingerprintToken(c),
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("store backup code: %w", err)
			}
		}

		// The enrollment row carries the lock counter for this factor.
		_, err := tx.Enrollments().GetActiveEnrollment(ctx, userID, f.name)
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Enrollments().CreateEnrollment(ctx, domain.Enrollment{
			ID:        idx.NewAt(now).String(),
			UserID:    userID,
			Factor:    f.name,
			Label:     "backup codes",
			Confirmed: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, len(raw))
	for i, c := range raw {
		out[i] = FormatBackupCode(c)
	}
	return out, nil
}
