package domain

import "time"

// BackupCode is a single-use recovery code, stored as a SHA-256 fingerprint.
type BackupCode struct {
	ID        string
	UserID    string
	CodeHash  string
	UsedAt    *time.Time
	CreatedAt time.Time
}

// OTPCode is the single active email or SMS code for a (user, factor).
type OTPCode struct {
	ID          string
	UserID      string
	Factor      string
	CodeHash    string
	Destination string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the code's validity window has passed at now.
// The window is inclusive: a code is still valid exactly at ExpiresAt.
func (c OTPCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Delivery describes where a freshly issued code was sent.
type Delivery struct {
	Factor      string    `json:"factor"`
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expires_at"`
}
