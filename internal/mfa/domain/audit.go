package domain

import "time"

// Audit event names.
const (
	EventSessionStarted   = "session_started"
	EventSessionSatisfied = "session_satisfied"
	EventSessionFailed    = "session_failed"
	EventCodeIssued       = "code_issued"
	EventCodeThrottled    = "code_throttled"
	EventFactorPassed     = "factor_passed"
	EventFactorFailed     = "factor_failed"
	EventFactorLocked     = "factor_locked"
	EventFactorUnlocked   = "factor_unlocked"
	EventFactorEnrolled   = "factor_enrolled"
	EventFactorRevoked    = "factor_revoked"
	EventBackupCodesReset = "backupcodes_regenerated"
)

type AuditEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Factor     string    `json:"factor,omitempty"`
	Event      string    `json:"event"`
	Detail     string    `json:"detail,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
