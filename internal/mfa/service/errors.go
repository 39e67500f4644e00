package service

import (
	"context"
	"errors"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/pkg/idx"
	"github.com/nexosupport/nexomfa/pkg/slogx"
)

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionClosed      = errors.New("session_closed")
	ErrFactorResolved     = errors.New("factor_resolved")
	ErrNotInteractive     = errors.New("factor_not_interactive")
	ErrEnrollmentNotFound = errors.New("enrollment_not_found")
	ErrIPRangeNotFound    = errors.New("iprange_not_found")
	ErrIPRangeExists      = errors.New("iprange_exists")
)

func utcNow() time.Time { return time.Now().UTC() }

// writeAudit appends an audit row. Audit failures are logged and never fail
// the operation that produced them.
func writeAudit(ctx context.Context, st store.Store, now time.Time, e domain.AuditEvent) {
	e.ID = idx.NewAt(now).String()
	e.CreatedAt = now
	if err := st.Audit().AppendAuditEvent(ctx, e); err != nil {
		slogx.FromContext(ctx).ErrorContext(ctx, "failed to write audit event",
			"event", e.Event,
			"user_id", e.UserID,
			"err", err,
		)
	}
}
