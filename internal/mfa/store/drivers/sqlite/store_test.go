package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/internal/mfa/store/drivers/sqlite"
	"github.com/nexosupport/nexomfa/pkg/idx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1700000000, 0).UTC()

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "mfa.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func enroll(t *testing.T, s store.Store, userID, factor string) domain.Enrollment {
	t.Helper()
	e := domain.Enrollment{
		ID:        idx.New().String(),
		UserID:    userID,
		Factor:    factor,
		Secret:    "secret",
		Confirmed: true,
		CreatedAt: t0,
	}
	require.NoError(t, s.Enrollments().CreateEnrollment(context.Background(), e))
	return e
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestEnrollments_UniqueActivePerFactor(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	enroll(t, s, "u1", domain.FactorTOTP)

	err := s.Enrollments().CreateEnrollment(ctx, domain.Enrollment{
		ID: idx.New().String(), UserID: "u1", Factor: domain.FactorTOTP, CreatedAt: t0,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.Enrollments().RevokeEnrollment(ctx, "u1", domain.FactorTOTP, t0))
	_, err = s.Enrollments().GetActiveEnrollment(ctx, "u1", domain.FactorTOTP)
	require.ErrorIs(t, err, store.ErrNotFound)

	// A revoked row does not block re-enrollment.
	enroll(t, s, "u1", domain.FactorTOTP)
	list, err := s.Enrollments().ListActiveEnrollments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.ErrorIs(t, s.Enrollments().RevokeEnrollment(ctx, "u2", domain.FactorTOTP, t0), store.ErrNotFound)
}

func TestEnrollments_LockCounter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	enroll(t, s, "u1", domain.FactorSMS)

	for i := 1; i <= 4; i++ {
		n, err := s.Enrollments().IncrementLockCounter(ctx, "u1", domain.FactorSMS, 5, t0)
		require.NoError(t, err)
		require.Equal(t, i, n)
	}
	e, err := s.Enrollments().GetActiveEnrollment(ctx, "u1", domain.FactorSMS)
	require.NoError(t, err)
	require.Nil(t, e.LockedAt)

	n, err := s.Enrollments().IncrementLockCounter(ctx, "u1", domain.FactorSMS, 5, t0.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	e, err = s.Enrollments().GetActiveEnrollment(ctx, "u1", domain.FactorSMS)
	require.NoError(t, err)
	require.NotNil(t, e.LockedAt)
	require.Equal(t, t0.Add(time.Second), *e.LockedAt)

	// Further failures keep the original lock time.
	_, err = s.Enrollments().IncrementLockCounter(ctx, "u1", domain.FactorSMS, 5, t0.Add(time.Minute))
	require.NoError(t, err)
	e, err = s.Enrollments().GetActiveEnrollment(ctx, "u1", domain.FactorSMS)
	require.NoError(t, err)
	require.Equal(t, t0.Add(time.Second), *e.LockedAt)

	require.NoError(t, s.Enrollments().ResetLockCounters(ctx, "u1", t0))
	e, err = s.Enrollments().GetActiveEnrollment(ctx, "u1", domain.FactorSMS)
	require.NoError(t, err)
	require.Zero(t, e.LockCounter)
	require.Nil(t, e.LockedAt)

	_, err = s.Enrollments().IncrementLockCounter(ctx, "nobody", domain.FactorSMS, 5, t0)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnrollments_LockCounterIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	enroll(t, s, "u1", domain.FactorTOTP)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Enrollments().IncrementLockCounter(ctx, "u1", domain.FactorTOTP, 100, t0)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	e, err := s.Enrollments().GetActiveEnrollment(ctx, "u1", domain.FactorTOTP)
	require.NoError(t, err)
	require.Equal(t, 20, e.LockCounter)
}

func TestEnrollments_UnlockExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	enroll(t, s, "u1", domain.FactorTOTP)
	enroll(t, s, "u2", domain.FactorTOTP)

	_, err := s.Enrollments().IncrementLockCounter(ctx, "u1", domain.FactorTOTP, 1, t0)
	require.NoError(t, err)
	_, err = s.Enrollments().IncrementLockCounter(ctx, "u2", domain.FactorTOTP, 1, t0.Add(time.Hour))
	require.NoError(t, err)

	n, err := s.Enrollments().UnlockExpired(ctx, t0.Add(30*time.Minute), t0.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	e, err := s.Enrollments().GetActiveEnrollment(ctx, "u2", domain.FactorTOTP)
	require.NoError(t, err)
	require.NotNil(t, e.LockedAt)
}

func TestEnrollments_AdvanceLastStep(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	e := enroll(t, s, "u1", domain.FactorTOTP)

	ok, err := s.Enrollments().AdvanceLastStep(ctx, e.ID, 100, t0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Enrollments().AdvanceLastStep(ctx, e.ID, 100, t0)
	require.NoError(t, err)
	require.False(t, ok, "same step must not be accepted twice")

	ok, err = s.Enrollments().AdvanceLastStep(ctx, e.ID, 99, t0)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Enrollments().AdvanceLastStep(ctx, e.ID, 101, t0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestBackupCodes_ConsumeExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, h := range []string{"h1", "h2"} {
		require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
			ID: idx.New().String(), UserID: "u1", CodeHash: h, CreatedAt: t0,
		}))
	}

	ok, err := s.BackupCodes().ConsumeBackupCode(ctx, "u1", "h1", t0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.BackupCodes().ConsumeBackupCode(ctx, "u1", "h1", t0)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.BackupCodes().ConsumeBackupCode(ctx, "u2", "h2", t0)
	require.NoError(t, err)
	require.False(t, ok, "codes are scoped to their user")

	n, err := s.BackupCodes().CountUnusedBackupCodes(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, s.BackupCodes().DeleteAllBackupCodes(ctx, "u1"))
	n, err = s.BackupCodes().CountUnusedBackupCodes(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestBackupCodes_ConsumeConcurrently(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID: idx.New().String(), UserID: "u1", CodeHash: "h1", CreatedAt: t0,
	}))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.BackupCodes().ConsumeBackupCode(ctx, "u1", "h1", t0)
			require.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	n, err := s.BackupCodes().CountUnusedBackupCodes(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestOTPCodes_UpsertReplacesAndConsume(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := domain.OTPCode{
		ID: idx.New().String(), UserID: "u1", Factor: domain.FactorSMS, CodeHash: "a",
		Destination: "+5491100000000", IssuedAt: t0, ExpiresAt: t0.Add(5 * time.Minute),
	}
	require.NoError(t, s.OTPCodes().UpsertOTPCode(ctx, first))

	second := first
	second.ID = idx.New().String()
	second.CodeHash = "b"
	second.IssuedAt = t0.Add(time.Minute)
	second.ExpiresAt = t0.Add(6 * time.Minute)
	require.NoError(t, s.OTPCodes().UpsertOTPCode(ctx, second))

	got, err := s.OTPCodes().GetOTPCode(ctx, "u1", domain.FactorSMS)
	require.NoError(t, err)
	require.Equal(t, second, got)

	ok, err := s.OTPCodes().ConsumeOTPCode(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, ok, "replaced code is gone")

	ok, err = s.OTPCodes().ConsumeOTPCode(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.OTPCodes().GetOTPCode(ctx, "u1", domain.FactorSMS)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOTPCodes_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.OTPCodes().UpsertOTPCode(ctx, domain.OTPCode{
		ID: idx.New().String(), UserID: "u1", Factor: domain.FactorEmail, CodeHash: "a",
		Destination: "a@b.c", IssuedAt: t0, ExpiresAt: t0.Add(time.Minute),
	}))
	require.NoError(t, s.OTPCodes().UpsertOTPCode(ctx, domain.OTPCode{
		ID: idx.New().String(), UserID: "u2", Factor: domain.FactorEmail, CodeHash: "a",
		Destination: "a@b.c", IssuedAt: t0, ExpiresAt: t0.Add(time.Hour),
	}))

	n, err := s.OTPCodes().DeleteExpiredOTPCodes(ctx, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func newSession(id string) domain.Session {
	return domain.Session{
		ID:         id,
		UserID:     "u1",
		RemoteAddr: "10.0.0.1",
		Status:     domain.StatusPending,
		CreatedAt:  t0,
		ExpiresAt:  t0.Add(15 * time.Minute),
		Factors: []domain.SessionFactor{
			{Factor: domain.FactorIPRange, State: domain.StateUnknown},
			{Factor: domain.FactorSMS, State: domain.StateUnknown},
			{Factor: domain.FactorTOTP, State: domain.StateUnknown},
		},
	}
}

func TestSessions_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	id := idx.New().String()

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().CreateSession(ctx, newSession(id))
	}))

	got, err := s.Sessions().GetSession(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, got.Status)
	require.Len(t, got.Factors, 3)
	require.Equal(t, domain.FactorIPRange, got.Factors[0].Factor)
	require.Equal(t, domain.FactorTOTP, got.Factors[2].Factor)

	require.NoError(t, s.Sessions().SetFactorState(ctx, id, domain.FactorSMS, domain.StateFail, t0))
	n, err := s.Sessions().IncrementFactorAttempts(ctx, id, domain.FactorSMS, t0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	first, err := s.Sessions().MarkChallenged(ctx, id, domain.FactorSMS, t0)
	require.NoError(t, err)
	require.True(t, first)
	again, err := s.Sessions().MarkChallenged(ctx, id, domain.FactorSMS, t0)
	require.NoError(t, err)
	require.False(t, again)

	done, err := s.Sessions().CompleteSession(ctx, id, domain.StatusSatisfied, t0)
	require.NoError(t, err)
	require.True(t, done)
	done, err = s.Sessions().CompleteSession(ctx, id, domain.StatusFailed, t0)
	require.NoError(t, err)
	require.False(t, done, "terminal status does not change")

	got, err = s.Sessions().GetSession(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSatisfied, got.Status)
	require.NotNil(t, got.CompletedAt)
	sms, _ := got.Factor(domain.FactorSMS)
	require.Equal(t, domain.StateFail, sms.State)
	require.Equal(t, 1, sms.Attempts)
	require.NotNil(t, sms.ChallengedAt)

	require.ErrorIs(t, s.Sessions().SetFactorState(ctx, id, "nope", domain.StatePass, t0), store.ErrNotFound)
	_, err = s.Sessions().GetSession(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessions_DeleteExpiredCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	id := idx.New().String()
	require.NoError(t, s.Sessions().CreateSession(ctx, newSession(id)))

	n, err := s.Sessions().DeleteExpiredSessions(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = s.Sessions().GetSession(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
			ID: idx.New().String(), UserID: "u1", CodeHash: "h", CreatedAt: t0,
		}))
		return store.ErrNotFound
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.BackupCodes().CountUnusedBackupCodes(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestIPRangesAndAudit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	allow := domain.IPRange{ID: idx.New().String(), CIDR: "10.0.0.0/8", Kind: domain.IPRangeAllow, Enabled: true, CreatedAt: t0}
	off := domain.IPRange{ID: idx.New().String(), CIDR: "192.168.0.0/16", Kind: domain.IPRangeDeny, CreatedAt: t0}
	require.NoError(t, s.IPRanges().CreateIPRange(ctx, allow))
	require.NoError(t, s.IPRanges().CreateIPRange(ctx, off))
	require.ErrorIs(t, s.IPRanges().CreateIPRange(ctx, domain.IPRange{
		ID: idx.New().String(), CIDR: "10.0.0.0/8", Kind: domain.IPRangeAllow, CreatedAt: t0,
	}), store.ErrAlreadyExists)

	all, err := s.IPRanges().ListIPRanges(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	enabled, err := s.IPRanges().ListIPRanges(ctx, true)
	require.NoError(t, err)
	require.Equal(t, []domain.IPRange{allow}, enabled)

	require.NoError(t, s.IPRanges().DeleteIPRange(ctx, off.ID))
	require.ErrorIs(t, s.IPRanges().DeleteIPRange(ctx, off.ID), store.ErrNotFound)

	var ids []string
	for i := range 5 {
		e := domain.AuditEvent{
			ID: idx.New().String(), UserID: "u1", Event: domain.EventFactorFailed,
			CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.Audit().AppendAuditEvent(ctx, e))
		ids = append(ids, e.ID)
	}

	page, err := s.Audit().ListUserAuditEvents(ctx, "u1", "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, ids[4], page[0].ID)

	next, err := s.Audit().ListUserAuditEvents(ctx, "u1", page[1].ID, 10)
	require.NoError(t, err)
	require.Len(t, next, 3)
	require.Equal(t, ids[2], next[0].ID)

	n, err := s.Audit().DeleteAuditEventsBefore(ctx, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}
