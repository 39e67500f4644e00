package domain

import "time"

// SessionStatus is the overall status of a verification session.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusSatisfied SessionStatus = "satisfied"
	StatusFailed    SessionStatus = "failed"
)

// Session tracks the second-factor verification of one login attempt.
type Session struct {
	ID          string
	UserID      string
	RemoteAddr  string
	Status      SessionStatus
	CreatedAt   time.Time
	ExpiresAt   time.Time
	CompletedAt *time.Time
	Factors     []SessionFactor
}

// SessionFactor is the per-factor state inside a session.
type SessionFactor struct {
	Factor       string
	State        State
	Attempts     int
	ChallengedAt *time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the session can no longer be used at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Closed reports whether the session reached a terminal status.
func (s Session) Closed() bool {
	return s.Status != StatusPending
}

// Factor returns the state entry for name.
func (s Session) Factor(name string) (SessionFactor, bool) {
	for _, f := range s.Factors {
		if f.Factor == name {
			return f, true
		}
	}
	return SessionFactor{}, false
}

// SetState updates the in-memory state for name.
func (s *Session) SetState(name string, st State, now time.Time) {
	for i := range s.Factors {
		if s.Factors[i].Factor == name {
			s.Factors[i].State = st
			s.Factors[i].UpdatedAt = now
			return
		}
	}
}

// PassedFactors lists factors in pass state, in session order.
func (s Session) PassedFactors() []string {
	var out []string
	for _, f := range s.Factors {
		if f.State == StatePass {
			out = append(out, f.Factor)
		}
	}
	return out
}

// VerifyResult is returned for each submitted factor input.
type VerifyResult struct {
	SessionID   string        `json:"session_id"`
	Factor      string        `json:"factor"`
	Outcome     Outcome       `json:"outcome"`
	State       State         `json:"state"`
	Status      SessionStatus `json:"status"`
	Attempts    int           `json:"attempts"`
	Remaining   int           `json:"remaining_attempts"`
	Assertion   string        `json:"assertion,omitempty"`
	AssertionAt *time.Time    `json:"assertion_expires_at,omitempty"`
}
