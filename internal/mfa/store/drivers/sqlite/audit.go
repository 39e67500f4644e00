package sqlite

import (
	"context"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

type auditRepo struct {
	db dbtx
}

func (r *auditRepo) AppendAuditEvent(ctx context.Context, e domain.AuditEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_audit_log (id, user_id, session_id, factor, event, detail, remote_addr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.SessionID, e.Factor, e.Event, e.Detail, e.RemoteAddr, toMillis(e.CreatedAt),
	)
	return err
}

func (r *auditRepo) ListUserAuditEvents(
	ctx context.Context,
	userID, before string,
	limit int,
) ([]domain.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, session_id, factor, event, detail, remote_addr, created_at
		FROM mfa_audit_log
		WHERE user_id = ? AND (? = '' OR id < ?)
		ORDER BY id DESC
		LIMIT ?`,
		userID, before, before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var (
			e         domain.AuditEvent
			createdAt int64
		)
		err := rows.Scan(&e.ID, &e.UserID, &e.SessionID, &e.Factor, &e.Event, &e.Detail, &e.RemoteAddr, &createdAt)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = fromMillis(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *auditRepo) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mfa_audit_log WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
