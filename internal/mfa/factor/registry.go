package factor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

// Builder constructs a factor from its config.
type Builder func(deps Deps, cfg Config) (Factor, error)

// LoadError reports a factor that could not be built. The factor is left
// out of the registry, which makes it not applicable for every user.
type LoadError struct {
	Name string
	Err  error
}

func (e LoadError) Error() string { return fmt.Sprintf("factor %s: %v", e.Name, e.Err) }
func (e LoadError) Unwrap() error { return e.Err }

type Registry struct {
	deps    Deps
	configs Configs

	names    []string
	builders map[string]Builder

	once     sync.Once
	factors  []Factor
	loadErrs []LoadError
}

// NewRegistry returns an empty registry. Register builders, then call
// Discover.
func NewRegistry(deps Deps, configs Configs) *Registry {
	return &Registry{
		deps:     deps.withDefaults(),
		configs:  configs,
		builders: make(map[string]Builder),
	}
}

// NewDefaultRegistry returns a registry with the built-in factors
// registered in the order iprange, sms, email, totp, backupcodes.
func NewDefaultRegistry(deps Deps, configs Configs) *Registry {
	r := NewRegistry(deps, configs)
	r.Register(domain.FactorIPRange, NewIPRange)
	r.Register(domain.FactorSMS, NewSMS)
	r.Register(domain.FactorEmail, NewEmail)
	r.Register(domain.FactorTOTP, NewTOTP)
	r.Register(domain.FactorBackupCodes, NewBackupCodes)
	return r
}

// Register adds a builder. Registration order breaks weight ties. It panics
// on duplicate names or after Discover ran.
func (r *Registry) Register(name string, b Builder) {
	if _, dup := r.builders[name]; dup {
		panic("factor: duplicate registration of " + name)
	}
	if r.factors != nil || r.loadErrs != nil {
		panic("factor: Register called after Discover")
	}
	r.names = append(r.names, name)
	r.builders[name] = b
}

// Discover builds every registered factor once and returns them sorted by
// weight. Later calls return the same result.
func (r *Registry) Discover() ([]Factor, []LoadError) {
	r.once.Do(func() {
		factors := make([]Factor, 0, len(r.names))
		loadErrs := []LoadError{}
		for _, name := range r.names {
			f, err := r.builders[name](r.deps, r.configs.Get(name))
			if err == nil && f == nil {
				err = errors.New("builder returned nil")
			}
			if err != nil {
				loadErrs = append(loadErrs, LoadError{Name: name, Err: err})
				continue
			}
			factors = append(factors, f)
		}
		slices.SortStableFunc(factors, func(a, b Factor) int {
			return cmp.Compare(a.Weight(), b.Weight())
		})
		r.factors = factors
		r.loadErrs = loadErrs
	})
	return slices.Clone(r.factors), slices.Clone(r.loadErrs)
}

// Enabled returns the enabled factors in weight order.
func (r *Registry) Enabled() []Factor {
	all, _ := r.Discover()
	out := all[:0]
	for _, f := range all {
		if f.Enabled() {
			out = append(out, f)
		}
	}
	return out
}

// ByName returns the enabled factor called name.
func (r *Registry) ByName(name string) (Factor, error) {
	for _, f := range r.Enabled() {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFactorNotFound, name)
}

// HasInputFactors reports whether any enabled factor needs user input. The
// login flow skips the MFA page entirely when it is false.
func (r *Registry) HasInputFactors() bool {
	for _, f := range r.Enabled() {
		if f.HasInput() {
			return true
		}
	}
	return false
}

type fallback struct{ base }

// Fallback is returned by next-factor selection when nothing is left to
// offer. It is always neutral.
var Fallback Factor = fallback{base{
	name: domain.FactorFallback,
	cfg:  Config{Enabled: true, Weight: math.MaxInt},
}}

func (fallback) HasSetup(context.Context, string) (bool, error) { return false, nil }

func (fallback) PossibleStates(context.Context, string) ([]domain.State, error) {
	return []domain.State{domain.StateNeutral}, nil
}

func (fallback) Verify(context.Context, Request) (domain.Outcome, error) {
	return domain.OutcomeNotApplicable, nil
}
