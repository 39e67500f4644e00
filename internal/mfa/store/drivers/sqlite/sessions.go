package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_sessions (id, user_id, remote_addr, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.RemoteAddr, string(s.Status), toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	if err != nil {
		return mapConflict(err)
	}
	if len(s.Factors) == 0 {
		return nil
	}

	var (
		b    strings.Builder
		args = make([]any, 0, len(s.Factors)*5)
	)
	b.WriteString(`INSERT INTO mfa_session_factors (session_id, factor, position, state, updated_at) VALUES `)
	for i, f := range s.Factors {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, s.ID, f.Factor, i, string(f.State), toMillis(s.CreatedAt))
	}
	_, err = r.db.ExecContext(ctx, b.String(), args...)
	return err
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var (
		s                    domain.Session
		status               string
		createdAt, expiresAt int64
		completedAt          sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, remote_addr, status, created_at, expires_at, completed_at
		FROM mfa_sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.UserID, &s.RemoteAddr, &status, &createdAt, &expiresAt, &completedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.Status = domain.SessionStatus(status)
	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	s.CompletedAt = mapNullMillis(completedAt)

	rows, err := r.db.QueryContext(ctx, `
		SELECT factor, state, attempts, challenged_at, updated_at
		FROM mfa_session_factors
		WHERE session_id = ?
		ORDER BY position`,
		id,
	)
	if err != nil {
		return domain.Session{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f            domain.SessionFactor
			state        string
			challengedAt sql.NullInt64
			updatedAt    int64
		)
		if err := rows.Scan(&f.Factor, &state, &f.Attempts, &challengedAt, &updatedAt); err != nil {
			return domain.Session{}, err
		}
		f.State = domain.State(state)
		f.ChallengedAt = mapNullMillis(challengedAt)
		f.UpdatedAt = fromMillis(updatedAt)
		s.Factors = append(s.Factors, f)
	}
	return s, rows.Err()
}

func (r *sessionsRepo) SetFactorState(
	ctx context.Context,
	sessionID, factor string,
	state domain.State,
	now time.Time,
) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE mfa_session_factors SET state = ?, updated_at = ?
		WHERE session_id = ? AND factor = ?`,
		string(state), toMillis(now), sessionID, factor,
	))
}

func (r *sessionsRepo) IncrementFactorAttempts(ctx context.Context, sessionID, factor string, now time.Time) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx, `
		UPDATE mfa_session_factors SET attempts = attempts + 1, updated_at = ?
		WHERE session_id = ? AND factor = ?
		RETURNING attempts`,
		toMillis(now), sessionID, factor,
	).Scan(&attempts)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return attempts, nil
}

func (r *sessionsRepo) MarkChallenged(ctx context.Context, sessionID, factor string, now time.Time) (bool, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE mfa_session_factors SET challenged_at = ?, updated_at = ?
		WHERE session_id = ? AND factor = ? AND challenged_at IS NULL`,
		toMillis(now), toMillis(now), sessionID, factor,
	))
}

func (r *sessionsRepo) CompleteSession(
	ctx context.Context,
	id string,
	status domain.SessionStatus,
	now time.Time,
) (bool, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE mfa_sessions SET status = ?, completed_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(status), toMillis(now), id,
	))
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mfa_sessions WHERE expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
