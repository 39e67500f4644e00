package domain

// Factor names known to the service.
const (
	FactorIPRange     = "iprange"
	FactorSMS         = "sms"
	FactorEmail       = "email"
	FactorTOTP        = "totp"
	FactorBackupCodes = "backupcodes"

	// FactorFallback is the sentinel returned when no factor remains to be
	// presented. It is always neutral and never verifiable.
	FactorFallback = "fallback"
)

// DefaultWeight is used for factors without an explicit weight.
const DefaultWeight = 100

// State is the verification state of one factor within a session.
type State string

const (
	StateUnknown State = "unknown"
	StatePass    State = "pass"
	StateFail    State = "fail"
	StateNeutral State = "neutral"
	StateLocked  State = "locked"
)

// Resolved reports whether s can no longer change within a session.
// A fail is only final for passive factors; see Session.Pending.
func (s State) Resolved() bool {
	return s == StatePass || s == StateNeutral || s == StateLocked
}

// Outcome is the result of a single verification attempt.
type Outcome string

const (
	OutcomePass          Outcome = "pass"
	OutcomeFail          Outcome = "fail"
	OutcomeExpired       Outcome = "expired"
	OutcomeNotApplicable Outcome = "not_applicable"
	OutcomeLocked        Outcome = "locked"
)

// FactorDescriptor is the immutable configuration of a discovered factor.
type FactorDescriptor struct {
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	Weight     int    `json:"weight"`
	HasInput   bool   `json:"has_input"`
	Required   bool   `json:"required"`
	Sufficient bool   `json:"sufficient"`
}
