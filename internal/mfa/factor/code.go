package factor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/notify"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/pkg/cryptox"
	"github.com/nexosupport/nexomfa/pkg/idx"
)

// codeFactor sends a short numeric code to an enrolled destination. SMS and
// email share it and differ only in channel, TTL and address handling.
type codeFactor struct {
	base
	deps      Deps
	sender    notify.Sender
	channel   string
	ttl       time.Duration
	normalize func(string) (string, error)
	mask      func(string) string
}

var (
	_ Issuer              = (*codeFactor)(nil)
	_ PostPassHook        = (*codeFactor)(nil)
	_ DestinationEnroller = (*codeFactor)(nil)
)

// NewSMS builds the SMS code factor. It needs an SMS gateway when enabled.
func NewSMS(deps Deps, cfg Config) (Factor, error) {
	if cfg.Enabled && deps.SMS == nil {
		return nil, errors.New("no sms gateway configured")
	}
	return &codeFactor{
		base:      base{name: domain.FactorSMS, cfg: cfg, hasInput: true},
		deps:      deps,
		sender:    deps.SMS,
		channel:   notify.ChannelSMS,
		ttl:       deps.Settings.SMSCodeTTL,
		normalize: NormalizePhone,
		mask:      MaskPhone,
	}, nil
}

// NewEmail builds the email code factor. It needs an email gateway when
// enabled.
func NewEmail(deps Deps, cfg Config) (Factor, error) {
	if cfg.Enabled && deps.Email == nil {
		return nil, errors.New("no email gateway configured")
	}
	return &codeFactor{
		base:      base{name: domain.FactorEmail, cfg: cfg, hasInput: true},
		deps:      deps,
		sender:    deps.Email,
		channel:   notify.ChannelEmail,
		ttl:       deps.Settings.EmailCodeTTL,
		normalize: NormalizeEmail,
		mask:      MaskEmail,
	}, nil
}

func (f *codeFactor) HasSetup(ctx context.Context, userID string) (bool, error) {
	_, err := f.deps.Store.Enrollments().GetActiveEnrollment(ctx, userID, f.name)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (f *codeFactor) PossibleStates(ctx context.Context, userID string) ([]domain.State, error) {
	ok, err := f.HasSetup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return interactiveStates(ok), nil
}

func (f *codeFactor) MaskDestination(destination string) string { return f.mask(destination) }

// Issue generates a fresh code, replacing any earlier one, and hands it to
// the gateway. Delivery failures are logged only: the user can ask for a
// resend.
func (f *codeFactor) Issue(ctx context.Context, userID string) (domain.Delivery, error) {
	e, err := f.deps.Store.Enrollments().GetActiveEnrollment(ctx, userID, f.name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Delivery{}, ErrNotEnrolled
	}
	if err != nil {
		return domain.Delivery{}, fmt.Errorf("get enrollment: %w", err)
	}

	if err := f.deps.Limiter.Allow(ctx, "send:"+f.name+":"+userID); err != nil {
		return domain.Delivery{}, err
	}

	code, err := cryptox.NumericCode(f.deps.Settings.CodeLength)
	if err != nil {
		return domain.Delivery{}, err
	}
	hash, err := cryptox.HashCode(code)
	if err != nil {
		return domain.Delivery{}, fmt.Errorf("hash code: %w", err)
	}

	now := f.deps.Now()
	otp := domain.OTPCode{
		ID:          idx.NewAt(now).String(),
		UserID:      userID,
		Factor:      f.name,
		CodeHash:    hash,
		Destination: e.Secret,
		IssuedAt:    now,
		ExpiresAt:   now.Add(f.ttl),
	}
	if err := f.deps.Store.OTPCodes().UpsertOTPCode(ctx, otp); err != nil {
		return domain.Delivery{}, fmt.Errorf("store code: %w", err)
	}

	msg := notify.Message{
		Channel: f.channel,
		To:      e.Secret,
		Subject: f.deps.Settings.Issuer + " verification code",
		Body: fmt.Sprintf("%s verification code: %s. It expires in %d minutes.",
			f.deps.Settings.Issuer, code, int(f.ttl.Minutes())),
	}
	if err := f.sender.Send(ctx, msg); err != nil {
		f.deps.Logger.ErrorContext(ctx, "code delivery failed",
			"factor", f.name,
			"user_id", userID,
			"to", f.mask(e.Secret),
			"err", err,
		)
	}

	return domain.Delivery{
		Factor:      f.name,
		Destination: f.mask(e.Secret),
		ExpiresAt:   otp.ExpiresAt,
	}, nil
}

func (f *codeFactor) Verify(ctx context.Context, req Request) (domain.Outcome, error) {
	ok, err := f.HasSetup(ctx, req.UserID)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.OutcomeNotApplicable, nil
	}

	c, err := f.deps.Store.OTPCodes().GetOTPCode(ctx, req.UserID, f.name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.OutcomeFail, nil
	}
	if err != nil {
		return "", fmt.Errorf("get code: %w", err)
	}

	if c.Expired(f.deps.Now()) {
		return domain.OutcomeExpired, nil
	}

	err = cryptox.VerifyCode(strings.TrimSpace(req.Code), c.CodeHash)
	if errors.Is(err, cryptox.ErrCodeMismatch) {
		return domain.OutcomeFail, nil
	}
	if err != nil {
		return "", fmt.Errorf("verify code: %w", err)
	}

	// Two concurrent submissions of the same code: only one deletes it.
	consumed, err := f.deps.Store.OTPCodes().ConsumeOTPCode(ctx, c.ID)
	if err != nil {
		return "", fmt.Errorf("consume code: %w", err)
	}
	if !consumed {
		return domain.OutcomeFail, nil
	}
	return domain.OutcomePass, nil
}

// AfterPass drops any code still outstanding for the user.
func (f *codeFactor) AfterPass(ctx context.Context, userID string) error {
	return f.deps.Store.OTPCodes().DeleteUserOTPCodes(ctx, userID, f.name)
}

// Enroll binds destination to the user, replacing any previous one. The
// user proves ownership the first time a code sent there is verified.
func (f *codeFactor) Enroll(ctx context.Context, userID, destination, label string) (domain.Enrollment, error) {
	dest, err := f.normalize(destination)
	if err != nil {
		return domain.Enrollment{}, err
	}

	now := f.deps.Now()
	e := domain.Enrollment{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		Factor:    f.name,
		Label:     label,
		Secret:    dest,
		Confirmed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = f.deps.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Enrollments().RevokeEnrollment(ctx, userID, f.name, now)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.OTPCodes().DeleteUserOTPCodes(ctx, userID, f.name); err != nil {
			return err
		}
		return tx.Enrollments().CreateEnrollment(ctx, e)
	})
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("enroll %s: %w", f.name, err)
	}
	return e, nil
}
