package factor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/stretchr/testify/require"
)

func names(fs []factor.Factor) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name()
	}
	return out
}

func TestRegistry_SortsByWeightStable(t *testing.T) {
	fx := newFixture(t)
	cfgs := factor.DefaultConfigs()
	cfgs[domain.FactorIPRange] = factor.Config{Enabled: true, Weight: 30, Required: true}
	cfgs[domain.FactorSMS] = factor.Config{Enabled: true, Weight: 80, Required: true}

	r := factor.NewDefaultRegistry(fx.deps, cfgs)
	first, loadErrs := r.Discover()
	require.Empty(t, loadErrs)
	require.Equal(t, []string{
		domain.FactorIPRange, domain.FactorSMS,
		domain.FactorEmail, domain.FactorTOTP, domain.FactorBackupCodes,
	}, names(first))

	second, _ := r.Discover()
	require.Equal(t, names(first), names(second))
	require.Same(t, first[0], second[0])
}

func TestRegistry_TiesKeepRegistrationOrder(t *testing.T) {
	fx := newFixture(t)
	r := factor.NewDefaultRegistry(fx.deps, factor.DefaultConfigs())

	all, _ := r.Discover()
	require.Equal(t, factor.Names, names(all))
}

func TestRegistry_LoadErrors(t *testing.T) {
	fx := newFixture(t)
	fx.deps.SMS = nil

	r := factor.NewDefaultRegistry(fx.deps, factor.DefaultConfigs())
	all, loadErrs := r.Discover()
	require.Len(t, loadErrs, 1)
	require.Equal(t, domain.FactorSMS, loadErrs[0].Name)
	require.NotContains(t, names(all), domain.FactorSMS)

	_, err := r.ByName(domain.FactorSMS)
	require.ErrorIs(t, err, factor.ErrFactorNotFound)
}

func TestRegistry_DisabledWithoutGatewayLoads(t *testing.T) {
	fx := newFixture(t)
	fx.deps.Email = nil
	cfgs := factor.DefaultConfigs()
	cfgs[domain.FactorEmail] = factor.Config{Weight: 100}

	r := factor.NewDefaultRegistry(fx.deps, cfgs)
	all, loadErrs := r.Discover()
	require.Empty(t, loadErrs)
	require.Contains(t, names(all), domain.FactorEmail)
	require.NotContains(t, names(r.Enabled()), domain.FactorEmail)
}

func TestRegistry_CustomBuilderAndHasInput(t *testing.T) {
	fx := newFixture(t)
	boom := errors.New("boom")

	cfgs := factor.Configs{domain.FactorIPRange: {Enabled: true, Weight: 10}}
	r := factor.NewRegistry(fx.deps, cfgs)
	r.Register(domain.FactorIPRange, factor.NewIPRange)
	r.Register("broken", func(factor.Deps, factor.Config) (factor.Factor, error) { return nil, boom })

	all, loadErrs := r.Discover()
	require.Len(t, all, 1)
	require.Len(t, loadErrs, 1)
	require.ErrorIs(t, loadErrs[0], boom)
	require.False(t, r.HasInputFactors(), "only passive factors enabled")

	require.Panics(t, func() { r.Register("late", factor.NewTOTP) })
}

func TestRegistry_HasInputFactors(t *testing.T) {
	fx := newFixture(t)
	r := factor.NewDefaultRegistry(fx.deps, factor.DefaultConfigs())
	require.True(t, r.HasInputFactors())

	f, err := r.ByName(domain.FactorTOTP)
	require.NoError(t, err)
	require.Equal(t, domain.FactorDescriptor{
		Name: domain.FactorTOTP, Enabled: true, Weight: domain.DefaultWeight, HasInput: true, Required: true,
	}, f.Descriptor())
}

func TestFallbackIsAlwaysNeutral(t *testing.T) {
	ctx := context.Background()
	states, err := factor.Fallback.PossibleStates(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []domain.State{domain.StateNeutral}, states)

	out, err := factor.Fallback.Verify(ctx, factor.Request{UserID: "u1", Code: "x"})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeNotApplicable, out)
	require.False(t, factor.Fallback.HasInput())
}
