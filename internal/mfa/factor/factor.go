// Package factor holds the pluggable verification methods and the registry
// that builds them from configuration.
//
// A factor is either interactive (HasInput, the user submits a code) or
// passive (evaluated from request data only, e.g. the IP range check).
// Verify never reports a wrong or expired code as an error: those are
// outcomes. Errors are reserved for storage and infrastructure failures.
package factor

import (
	"context"
	"errors"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

var (
	ErrFactorNotFound      = errors.New("factor: not found")
	ErrNotEnrolled         = errors.New("factor: user not enrolled")
	ErrAlreadyEnrolled     = errors.New("factor: already enrolled")
	ErrNoPendingEnrollment = errors.New("factor: no pending enrollment")
	ErrInvalidDestination  = errors.New("factor: invalid destination")
	ErrInvalidCode         = errors.New("factor: invalid code")
)

// Request carries the data a factor may look at while verifying.
type Request struct {
	UserID     string
	Code       string
	RemoteAddr string
}

type Factor interface {
	Name() string
	Enabled() bool
	Weight() int
	HasInput() bool
	Required() bool
	Sufficient() bool
	Descriptor() domain.FactorDescriptor

	// HasSetup reports whether the user has what the factor needs
	// (an enrollment, unused codes, configured ranges).
	HasSetup(ctx context.Context, userID string) (bool, error)

	// PossibleStates lists the states the factor can reach for userID.
	PossibleStates(ctx context.Context, userID string) ([]domain.State, error)

	Verify(ctx context.Context, req Request) (domain.Outcome, error)
}

// Issuer is implemented by factors that send a code before it can be
// verified.
type Issuer interface {
	Issue(ctx context.Context, userID string) (domain.Delivery, error)
}

// PostPassHook runs after a session the factor took part in is satisfied.
type PostPassHook interface {
	AfterPass(ctx context.Context, userID string) error
}

// DestinationEnroller is implemented by factors bound to a phone number or
// email address.
type DestinationEnroller interface {
	Enroll(ctx context.Context, userID, destination, label string) (domain.Enrollment, error)
	MaskDestination(destination string) string
}

type base struct {
	name     string
	cfg      Config
	hasInput bool
}

func (b base) Name() string     { return b.name }
func (b base) Enabled() bool    { return b.cfg.Enabled }
func (b base) Weight() int      { return b.cfg.Weight }
func (b base) HasInput() bool   { return b.hasInput }
func (b base) Required() bool   { return b.cfg.Required }
func (b base) Sufficient() bool { return b.cfg.Sufficient }

func (b base) Descriptor() domain.FactorDescriptor {
	return domain.FactorDescriptor{
		Name:       b.name,
		Enabled:    b.cfg.Enabled,
		Weight:     b.cfg.Weight,
		HasInput:   b.hasInput,
		Required:   b.cfg.Required,
		Sufficient: b.cfg.Sufficient,
	}
}

// interactiveStates is what an interactive factor can reach once the user
// is set up for it.
func interactiveStates(setup bool) []domain.State {
	if !setup {
		return []domain.State{domain.StateNeutral}
	}
	return []domain.State{domain.StatePass, domain.StateFail, domain.StateLocked}
}
