package store

import (
	"context"
	"errors"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories so that the same repos are available inside a Tx.
type Store interface {
	Enrollments() Enrollments
	BackupCodes() BackupCodes
	OTPCodes() OTPCodes
	Sessions() Sessions
	IPRanges() IPRanges
	Audit() Audit

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Enrollments interface {
	// CreateEnrollment inserts e. ErrAlreadyExists when the user already has
	// an active enrollment for the factor.
	CreateEnrollment(ctx context.Context, e domain.Enrollment) error

	// GetActiveEnrollment returns the non-revoked enrollment for (user, factor).
	GetActiveEnrollment(ctx context.Context, userID, factor string) (domain.Enrollment, error)

	// ListActiveEnrollments returns the user's non-revoked enrollments.
	ListActiveEnrollments(ctx context.Context, userID string) ([]domain.Enrollment, error)

	// ConfirmEnrollment marks a pending enrollment confirmed.
	ConfirmEnrollment(ctx context.Context, id string, now time.Time) error

	// RevokeEnrollment revokes the active enrollment for (user, factor).
	RevokeEnrollment(ctx context.Context, userID, factor string, now time.Time) error

	// IncrementLockCounter atomically bumps the lock counter and stamps
	// locked_at once it reaches threshold. Returns the new counter.
	IncrementLockCounter(ctx context.Context, userID, factor string, threshold int, now time.Time) (int, error)

	// ResetLockCounters clears counters and locks on all of the user's enrollments.
	ResetLockCounters(ctx context.Context, userID string, now time.Time) error

	// Unlock clears the counter and lock of one enrollment.
	Unlock(ctx context.Context, userID, factor string, now time.Time) error

	// UnlockExpired clears locks stamped before cutoff. Returns rows affected.
	UnlockExpired(ctx context.Context, cutoff, now time.Time) (int64, error)

	// AdvanceLastStep moves last_step forward to step only if it is greater,
	// reporting whether it moved. Used to reject replayed TOTP codes.
	AdvanceLastStep(ctx context.Context, id string, step int64, now time.Time) (bool, error)

	// TouchLastVerified stamps last_verified_at for (user, factor).
	TouchLastVerified(ctx context.Context, userID, factor string, now time.Time) error
}

type BackupCodes interface {
	CreateBackupCode(ctx context.Context, c domain.BackupCode) error

	// ConsumeBackupCode marks an unused code used, reporting whether a row
	// matched. A code can be consumed exactly once.
	ConsumeBackupCode(ctx context.Context, userID, codeHash string, now time.Time) (bool, error)

	DeleteAllBackupCodes(ctx context.Context, userID string) error

	CountUnusedBackupCodes(ctx context.Context, userID string) (int, error)
}

type OTPCodes interface {
	// UpsertOTPCode replaces any code for (user, factor) in one statement.
	UpsertOTPCode(ctx context.Context, c domain.OTPCode) error

	GetOTPCode(ctx context.Context, userID, factor string) (domain.OTPCode, error)

	// ConsumeOTPCode deletes the code by id, reporting whether it still existed.
	ConsumeOTPCode(ctx context.Context, id string) (bool, error)

	DeleteUserOTPCodes(ctx context.Context, userID, factor string) error

	DeleteExpiredOTPCodes(ctx context.Context, now time.Time) (int64, error)
}

type Sessions interface {
	// CreateSession inserts the session and its factor rows.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns the session with factors in insertion order.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	SetFactorState(ctx context.Context, sessionID, factor string, state domain.State, now time.Time) error

	// IncrementFactorAttempts atomically bumps the attempt counter and
	// returns the new value.
	IncrementFactorAttempts(ctx context.Context, sessionID, factor string, now time.Time) (int, error)

	// MarkChallenged stamps challenged_at if unset, reporting whether this
	// call set it.
	MarkChallenged(ctx context.Context, sessionID, factor string, now time.Time) (bool, error)

	// CompleteSession moves a pending session to status, reporting whether
	// this call made the transition.
	CompleteSession(ctx context.Context, id string, status domain.SessionStatus, now time.Time) (bool, error)

	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type IPRanges interface {
	CreateIPRange(ctx context.Context, r domain.IPRange) error
	ListIPRanges(ctx context.Context, enabledOnly bool) ([]domain.IPRange, error)
	DeleteIPRange(ctx context.Context, id string) error
}

type Audit interface {
	AppendAuditEvent(ctx context.Context, e domain.AuditEvent) error

	// ListUserAuditEvents returns newest-first events for the user with ids
	// lower than before (empty for the first page).
	ListUserAuditEvents(ctx context.Context, userID, before string, limit int) ([]domain.AuditEvent, error)

	DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
