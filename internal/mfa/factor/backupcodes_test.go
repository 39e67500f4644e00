package factor_test

import (
	"context"
	"regexp"
	"slices"
	"testing"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/pkg/cryptox"
	"github.com/nexosupport/nexomfa/pkg/idx"
	"github.com/stretchr/testify/require"
)

func backupFactor(t *testing.T, fx *fixture) *factor.BackupCodes {
	t.Helper()
	f, ok := fx.get(t, domain.FactorBackupCodes).(*factor.BackupCodes)
	require.True(t, ok)
	return f
}

func TestBackupCodes_NoCodesIsNeutral(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	f := backupFactor(t, fx)

	states, err := f.PossibleStates(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []domain.State{domain.StateNeutral}, states)

	out, err := f.Verify(ctx, factor.Request{UserID: "u1", Code: "ABCD-EFGH"})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeNotApplicable, out)
}

func TestBackupCodes_GenerateAndConsumeAll(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	f := backupFactor(t, fx)

	codes, err := f.Generate(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, codes, factor.BackupCodeCount)

	format := regexp.MustCompile(`^[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{4}-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{4}$`)
	for _, c := range codes {
		require.Regexp(t, format, c)
	}

	// The enrollment row exists so failures can be counted.
	e, err := fx.store.Enrollments().GetActiveEnrollment(ctx, "u1", domain.FactorBackupCodes)
	require.NoError(t, err)
	require.True(t, e.Confirmed)

	for _, c := range codes {
		out, err := f.Verify(ctx, factor.Request{UserID: "u1", Code: c})
		require.NoError(t, err)
		require.Equal(t, domain.OutcomePass, out)
	}

	n, err := f.Remaining(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)

	out, err := f.Verify(ctx, factor.Request{UserID: "u1", Code: codes[0]})
	require.NoError(t, err)
	require.NotEqual(t, domain.OutcomePass, out)
}

func TestBackupCodes_SingleCodeConsumedOnce(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	f := backupFactor(t, fx)

	for _, c := range []string{"ABCD1234", "WXYZ5678", "QRST2345"} {
		require.NoError(t, fx.store.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
			ID:        idx.New().String(),
			UserID:    "u1",
			CodeHash:  cryptox.FingerprintToken(c),
			CreatedAt: fx.clock.Now(),
		}))
	}

	out, err := f.Verify(ctx, factor.Request{UserID: "u1", Code: "ABCD-1234"})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomePass, out)

	out, err = f.Verify(ctx, factor.Request{UserID: "u1", Code: "abcd 1234"})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeFail, out)

	n, err := f.Remaining(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestBackupCodes_RegenerateInvalidatesOld(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	f := backupFactor(t, fx)

	old, err := f.Generate(ctx, "u1")
	require.NoError(t, err)
	fresh, err := f.Generate(ctx, "u1")
	require.NoError(t, err)

	n, err := f.Remaining(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, factor.BackupCodeCount, n)

	out, err := f.Verify(ctx, factor.Request{UserID: "u1", Code: old[0]})
	require.NoError(t, err)
	if !slices.Contains(fresh, old[0]) {
		require.Equal(t, domain.OutcomeFail, out)
	}
}

func TestNormalizeBackupCode(t *testing.T) {
	require.Equal(t, "ABCD1234", factor.NormalizeBackupCode(" abcd-1234 "))
	require.Equal(t, "ABCD-1234", factor.FormatBackupCode("ABCD1234"))
	require.Equal(t, "short", factor.FormatBackupCode("short"))
}
