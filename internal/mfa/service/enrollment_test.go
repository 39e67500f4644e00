package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestEnrollment_ListRevoke(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, fixtureOpts{})

	uf, err := fx.enroll.SetDestination(ctx, "u1", domain.FactorEmail, "jane@example.com", "work")
	require.NoError(t, err)
	require.Equal(t, "j***@example.com", uf.Destination)

	codes, err := fx.enroll.RegenerateBackupCodes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, codes, factor.BackupCodeCount)

	list, err := fx.enroll.ListFactors(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, f := range list {
		switch f.Factor {
		case domain.FactorEmail:
			require.Equal(t, "j***@example.com", f.Destination)
			require.Equal(t, "work", f.Label)
			require.Nil(t, f.Remaining)
		case domain.FactorBackupCodes:
			require.NotNil(t, f.Remaining)
			require.Equal(t, factor.BackupCodeCount, *f.Remaining)
		}
	}

	require.NoError(t, fx.enroll.Revoke(ctx, "u1", domain.FactorBackupCodes))
	n, err := fx.store.BackupCodes().CountUnusedBackupCodes(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)

	require.ErrorIs(t, fx.enroll.Revoke(ctx, "u1", domain.FactorBackupCodes), service.ErrEnrollmentNotFound)
	require.ErrorIs(t, fx.enroll.Unlock(ctx, "u1", domain.FactorTOTP), service.ErrEnrollmentNotFound)

	_, err = fx.enroll.SetDestination(ctx, "u1", domain.FactorTOTP, "x", "")
	require.ErrorIs(t, err, service.ErrInvalidRequest)
	_, err = fx.enroll.SetDestination(ctx, "u1", domain.FactorSMS, "123", "")
	require.ErrorIs(t, err, factor.ErrInvalidDestination)
}

func TestEnrollment_DisabledFactor(t *testing.T) {
	cfgs := factor.DefaultConfigs()
	cfgs[domain.FactorTOTP] = factor.Config{Weight: 100}
	fx := newFixture(t, fixtureOpts{configs: cfgs})

	_, err := fx.enroll.BeginTOTP(context.Background(), "u1", "")
	require.ErrorIs(t, err, factor.ErrFactorNotFound)
}

func TestEnrollment_AuditPaging(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, fixtureOpts{})

	for range 3 {
		_, err := fx.enroll.RegenerateBackupCodes(ctx, "u1")
		require.NoError(t, err)
		fx.clock.Advance(time.Second)
	}

	page, err := fx.enroll.ListAudit(ctx, "u1", "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, domain.EventBackupCodesReset, page[0].Event)

	rest, err := fx.enroll.ListAudit(ctx, "u1", page[1].ID, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
}

func TestIPRangeService(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, fixtureOpts{})
	svc := &service.IPRangeService{Store: fx.store, Now: fx.clock.Now}

	_, err := svc.Create(ctx, service.CreateIPRangeInput{CIDR: "nope", Kind: domain.IPRangeAllow})
	require.ErrorIs(t, err, service.ErrInvalidRequest)
	_, err = svc.Create(ctx, service.CreateIPRangeInput{CIDR: "10.0.0.0/8", Kind: "maybe"})
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	r, err := svc.Create(ctx, service.CreateIPRangeInput{CIDR: "10.9.8.7/8", Kind: domain.IPRangeAllow, Enabled: true})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/8", r.CIDR)

	_, err = svc.Create(ctx, service.CreateIPRangeInput{CIDR: "10.0.0.0/8", Kind: domain.IPRangeAllow})
	require.ErrorIs(t, err, service.ErrIPRangeExists)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, r.ID))
	require.ErrorIs(t, svc.Delete(ctx, r.ID), service.ErrIPRangeNotFound)
}

type countingSweeper struct{ n int }

func (c *countingSweeper) Sweep() int { c.n++; return 3 }

func TestHousekeeping_Cleanup(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, fixtureOpts{})
	now := fx.clock.Now()
	enrollSMS(t, fx, "u1")

	require.NoError(t, fx.store.OTPCodes().UpsertOTPCode(ctx, domain.OTPCode{
		ID: idx.New().String(), UserID: "u1", Factor: domain.FactorSMS, CodeHash: "h",
		Destination: "+5491155551234", IssuedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-55 * time.Minute),
	}))
	_, err := fx.login.Start(ctx, "u1", "")
	require.NoError(t, err)
	require.NoError(t, fx.store.Audit().AppendAuditEvent(ctx, domain.AuditEvent{
		ID: idx.New().String(), UserID: "u1", Event: domain.EventFactorFailed, CreatedAt: now.Add(-100 * 24 * time.Hour),
	}))

	_, err = fx.store.Enrollments().IncrementLockCounter(ctx, "u1", domain.FactorSMS, 1, now.Add(-2*time.Hour))
	require.NoError(t, err)

	hk := service.NewHousekeepingService(fx.store, slogDiscard(), time.Minute)
	hk.Now = func() time.Time { return now.Add(time.Hour) }
	hk.AuditRetention = 90 * 24 * time.Hour
	hk.LockoutDuration = time.Hour
	sw := &countingSweeper{}
	hk.Sweepers = []service.Sweeper{sw}

	rep := hk.Cleanup(ctx)
	require.EqualValues(t, 1, rep.OTPCodes)
	require.EqualValues(t, 1, rep.Sessions)
	require.EqualValues(t, 1, rep.AuditEvents)
	require.EqualValues(t, 1, rep.Unlocked)
	require.Equal(t, 3, rep.Swept)
	require.Zero(t, rep.Failures)
}

func TestHousekeeping_StartStop(t *testing.T) {
	fx := newFixture(t, fixtureOpts{})
	hk := service.NewHousekeepingService(fx.store, slogDiscard(), 10*time.Millisecond)
	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
}
