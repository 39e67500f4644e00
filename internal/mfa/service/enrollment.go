package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
)

const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 200
)

// EnrollmentService manages a user's factor setup outside of a login.
type EnrollmentService struct {
	Store           store.Store
	Registry        *factor.Registry
	LockoutDuration time.Duration
	Now             func() time.Time
}

func (s *EnrollmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utcNow()
}

func (s *EnrollmentService) audit(ctx context.Context, userID, factorName, event, detail string) {
	writeAudit(ctx, s.Store, s.now(), domain.AuditEvent{
		UserID: userID,
		Factor: factorName,
		Event:  event,
		Detail: detail,
	})
}

// ListFactors returns the user's active enrollments with secrets masked.
func (s *EnrollmentService) ListFactors(ctx context.Context, userID string) ([]domain.UserFactor, error) {
	list, err := s.Store.Enrollments().ListActiveEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.UserFactor, 0, len(list))
	for _, e := range list {
		uf := domain.UserFactor{
			Factor:         e.Factor,
			Label:          e.Label,
			Destination:    factor.MaskDestination(e.Factor, e.Secret),
			Confirmed:      e.Confirmed,
			Locked:         e.Locked(now, s.LockoutDuration),
			LockCounter:    e.LockCounter,
			LastVerifiedAt: e.LastVerifiedAt,
			CreatedAt:      e.CreatedAt,
		}
		if e.Factor == domain.FactorBackupCodes {
			n, err := s.Store.BackupCodes().CountUnusedBackupCodes(ctx, userID)
			if err != nil {
				return nil, err
			}
			uf.Remaining = &n
		}
		out = append(out, uf)
	}
	return out, nil
}

// Revoke removes the user's enrollment for a factor together with any
// codes that belong to it.
func (s *EnrollmentService) Revoke(ctx context.Context, userID, factorName string) error {
	now := s.now()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Enrollments().RevokeEnrollment(ctx, userID, factorName, now); err != nil {
			return err
		}
		if factorName == domain.FactorBackupCodes {
			return tx.BackupCodes().DeleteAllBackupCodes(ctx, userID)
		}
		return tx.OTPCodes().DeleteUserOTPCodes(ctx, userID, factorName)
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrEnrollmentNotFound
	}
	if err != nil {
		return err
	}
	s.audit(ctx, userID, factorName, domain.EventFactorRevoked, "")
	return nil
}

// Unlock clears the lock and failure counter of one enrollment.
func (s *EnrollmentService) Unlock(ctx context.Context, userID, factorName string) error {
	err := s.Store.Enrollments().Unlock(ctx, userID, factorName, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrEnrollmentNotFound
	}
	if err != nil {
		return err
	}
	s.audit(ctx, userID, factorName, domain.EventFactorUnlocked, "admin")
	return nil
}

func (s *EnrollmentService) totp() (*factor.TOTP, error) {
	f, err := s.Registry.ByName(domain.FactorTOTP)
	if err != nil {
		return nil, err
	}
	t, ok := f.(*factor.TOTP)
	if !ok {
		return nil, fmt.Errorf("%w: %s", factor.ErrFactorNotFound, domain.FactorTOTP)
	}
	return t, nil
}

// BeginTOTP starts authenticator enrollment.
func (s *EnrollmentService) BeginTOTP(ctx context.Context, userID, account string) (domain.TOTPEnrollment, error) {
	t, err := s.totp()
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}
	return t.Begin(ctx, userID, strings.TrimSpace(account))
}

// ConfirmTOTP activates a pending authenticator enrollment.
func (s *EnrollmentService) ConfirmTOTP(ctx context.Context, userID, code string) error {
	t, err := s.totp()
	if err != nil {
		return err
	}
	if err := t.Confirm(ctx, userID, code); err != nil {
		return err
	}
	s.audit(ctx, userID, domain.FactorTOTP, domain.EventFactorEnrolled, "")
	return nil
}

// SetDestination binds a phone number (sms) or address (email) to the user.
func (s *EnrollmentService) SetDestination(ctx context.Context, userID, factorName, destination, label string) (domain.UserFactor, error) {
	f, err := s.Registry.ByName(factorName)
	if err != nil {
		return domain.UserFactor{}, err
	}
	enroller, ok := f.(factor.DestinationEnroller)
	if !ok {
		return domain.UserFactor{}, fmt.Errorf("%w: %s has no destination", ErrInvalidRequest, factorName)
	}

	e, err := enroller.Enroll(ctx, userID, destination, strings.TrimSpace(label))
	if err != nil {
		return domain.UserFactor{}, err
	}
	masked := enroller.MaskDestination(e.Secret)
	s.audit(ctx, userID, factorName, domain.EventFactorEnrolled, masked)

	return domain.UserFactor{
		Factor:      e.Factor,
		Label:       e.Label,
		Destination: masked,
		Confirmed:   e.Confirmed,
		CreatedAt:   e.CreatedAt,
	}, nil
}

// RegenerateBackupCodes replaces the user's backup codes and returns the
// new batch in display form.
func (s *EnrollmentService) RegenerateBackupCodes(ctx context.Context, userID string) ([]string, error) {
	f, err := s.Registry.ByName(domain.FactorBackupCodes)
	if err != nil {
		return nil, err
	}
	b, ok := f.(*factor.BackupCodes)
	if !ok {
		return nil, fmt.Errorf("%w: %s", factor.ErrFactorNotFound, domain.FactorBackupCodes)
	}

	codes, err := b.Generate(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, userID, domain.FactorBackupCodes, domain.EventBackupCodesReset, fmt.Sprintf("%d codes", len(codes)))
	return codes, nil
}

// ListAudit pages through the user's audit log, newest first.
func (s *EnrollmentService) ListAudit(ctx context.Context, userID, before string, limit int) ([]domain.AuditEvent, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditPageSize
	case limit > MaxAuditPageSize:
		limit = MaxAuditPageSize
	}
	return s.Store.Audit().ListUserAuditEvents(ctx, userID, before, limit)
}
