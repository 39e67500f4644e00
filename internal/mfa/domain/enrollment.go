package domain

import "time"

// Enrollment binds a user to a factor. Secret holds the TOTP secret, the
// E.164 phone number or the email address; it is empty for backup codes.
type Enrollment struct {
	ID             string
	UserID         string
	Factor         string
	Label          string
	Secret         string
	Confirmed      bool
	LockCounter    int
	LockedAt       *time.Time
	LastStep       int64
	LastVerifiedAt *time.Time
	Revoked        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Locked reports whether the enrollment is locked at now. A zero lockout
// duration means locks only clear on explicit unlock.
func (e Enrollment) Locked(now time.Time, lockout time.Duration) bool {
	if e.LockedAt == nil {
		return false
	}
	if lockout <= 0 {
		return true
	}
	return now.Before(e.LockedAt.Add(lockout))
}

// UserFactor is the admin-facing view of one enrollment.
type UserFactor struct {
	Factor         string     `json:"factor"`
	Label          string     `json:"label,omitempty"`
	Destination    string     `json:"destination,omitempty"`
	Confirmed      bool       `json:"confirmed"`
	Locked         bool       `json:"locked"`
	LockCounter    int        `json:"lock_counter"`
	Remaining      *int       `json:"remaining,omitempty"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TOTPEnrollment is returned when a TOTP enrollment is started.
type TOTPEnrollment struct {
	Secret  string `json:"secret"`
	URL     string `json:"otpauth_url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}
