package factor

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/pkg/idx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 1
)

var totpOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TOTP verifies authenticator app codes. Enrollment is two-phase: Begin
// stores an unconfirmed secret, Confirm activates it once the user proves
// the app produces matching codes.
type TOTP struct {
	base
	deps Deps
}

// NewTOTP builds the TOTP factor.
func NewTOTP(deps Deps, cfg Config) (Factor, error) {
	return &TOTP{
		base: base{name: domain.FactorTOTP, cfg: cfg, hasInput: true},
		deps: deps,
	}, nil
}

func (f *TOTP) confirmed(ctx context.Context, userID string) (domain.Enrollment, bool, error) {
	e, err := f.deps.Store.Enrollments().GetActiveEnrollment(ctx, userID, f.name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Enrollment{}, false, nil
	}
	if err != nil {
		return domain.Enrollment{}, false, err
	}
	return e, e.Confirmed, nil
}

func (f *TOTP) HasSetup(ctx context.Context, userID string) (bool, error) {
	_, ok, err := f.confirmed(ctx, userID)
	return ok, err
}

func (f *TOTP) PossibleStates(ctx context.Context, userID string) ([]domain.State, error) {
	ok, err := f.HasSetup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return interactiveStates(ok), nil
}

func (f *TOTP) Verify(ctx context.Context, req Request) (domain.Outcome, error) {
	e, ok, err := f.confirmed(ctx, req.UserID)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.OutcomeNotApplicable, nil
	}
	return f.check(ctx, e, req.Code)
}

// check matches code against the steps around now and advances last_step
// so the same step is never accepted twice.
func (f *TOTP) check(ctx context.Context, e domain.Enrollment, code string) (domain.Outcome, error) {
	code = strings.TrimSpace(code)
	if len(code) != int(totpOpts.Digits) {
		return domain.OutcomeFail, nil
	}

	step, ok, err := matchStep(e.Secret, code, f.deps.Now())
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.OutcomeFail, nil
	}

	advanced, err := f.deps.Store.Enrollments().AdvanceLastStep(ctx, e.ID, step, f.deps.Now())
	if err != nil {
		return "", fmt.Errorf("advance step: %w", err)
	}
	if !advanced {
		return domain.OutcomeFail, nil
	}
	return domain.OutcomePass, nil
}

// matchStep returns the time step whose code equals code, checking the
// current step first and then the neighbours within skew.
func matchStep(secret, code string, now time.Time) (int64, bool, error) {
	current := now.Unix() / totpPeriod
	offsets := []int64{0}
	for i := int64(1); i <= totpSkew; i++ {
		offsets = append(offsets, -i, i)
	}
	for _, off := range offsets {
		step := current + off
		want, err := totp.GenerateCodeCustom(secret, time.Unix(step*totpPeriod, 0).UTC(), totpOpts)
		if err != nil {
			return 0, false, fmt.Errorf("generate totp: %w", err)
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return step, true, nil
		}
	}
	return 0, false, nil
}

// Begin creates a new unconfirmed secret for the user, discarding any
// earlier unconfirmed one.
func (f *TOTP) Begin(ctx context.Context, userID, account string) (domain.TOTPEnrollment, error) {
	if account == "" {
		account = userID
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      f.deps.Settings.Issuer,
		AccountName: account,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("generate totp key: %w", err)
	}

	now := f.deps.Now()
	err = f.deps.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Enrollments().GetActiveEnrollment(ctx, userID, f.name)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		case existing.Confirmed:
			return ErrAlreadyEnrolled
		default:
			if err := tx.Enrollments().RevokeEnrollment(ctx, userID, f.name, now); err != nil {
				return err
			}
		}
		return tx.Enrollments().CreateEnrollment(ctx, domain.Enrollment{
			ID:        idx.NewAt(now).String(),
			UserID:    userID,
			Factor:    f.name,
			Label:     account,
			Secret:    key.Secret(),
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}

	return domain.TOTPEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  f.deps.Settings.Issuer,
		Account: account,
	}, nil
}

// Confirm activates the pending secret if code is valid for it.
func (f *TOTP) Confirm(ctx context.Context, userID, code string) error {
	e, err := f.deps.Store.Enrollments().GetActiveEnrollment(ctx, userID, f.name)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoPendingEnrollment
	}
	if err != nil {
		return err
	}
	if e.Confirmed {
		return ErrAlreadyEnrolled
	}

	outcome, err := f.check(ctx, e, code)
	if err != nil {
		return err
	}
	if outcome != domain.OutcomePass {
		return ErrInvalidCode
	}
	return f.deps.Store.Enrollments().ConfirmEnrollment(ctx, e.ID, f.deps.Now())
}
