package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

type enrollmentsRepo struct {
	db dbtx
}

const enrollmentColumns = `id, user_id, factor, label, secret, confirmed, lock_counter, locked_at,
	last_step, last_verified_at, revoked, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnrollment(row rowScanner) (domain.Enrollment, error) {
	var (
		e                      domain.Enrollment
		confirmed, revoked     int
		lockedAt, lastVerified sql.NullInt64
		createdAt, updatedAt   int64
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.Factor, &e.Label, &e.Secret, &confirmed, &e.LockCounter, &lockedAt,
		&e.LastStep, &lastVerified, &revoked, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Enrollment{}, err
	}
	e.Confirmed = confirmed == 1
	e.Revoked = revoked == 1
	e.LockedAt = mapNullMillis(lockedAt)
	e.LastVerifiedAt = mapNullMillis(lastVerified)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}

func (r *enrollmentsRepo) CreateEnrollment(ctx context.Context, e domain.Enrollment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_enrollments (id, user_id, factor, label, secret, confirmed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Factor, e.Label, e.Secret, boolInt(e.Confirmed),
		toMillis(e.CreatedAt), toMillis(e.CreatedAt),
	)
	return mapConflict(err)
}

func (r *enrollmentsRepo) GetActiveEnrollment(ctx context.Context, userID, factor string) (domain.Enrollment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+enrollmentColumns+`
		FROM mfa_enrollments
		WHERE user_id = ? AND factor = ? AND revoked = 0`,
		userID, factor,
	)
	e, err := scanEnrollment(row)
	if err != nil {
		return domain.Enrollment{}, mapNotFound(err)
	}
	return e, nil
}

func (r *enrollmentsRepo) ListActiveEnrollments(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+enrollmentColumns+`
		FROM mfa_enrollments
		WHERE user_id = ? AND revoked = 0
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *enrollmentsRepo) ConfirmEnrollment(ctx context.Context, id string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE mfa_enrollments SET confirmed = 1, updated_at = ?
		WHERE id = ? AND revoked = 0`,
		toMillis(now), id,
	))
}

func (r *enrollmentsRepo) RevokeEnrollment(ctx context.Context, userID, factor string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE mfa_enrollments SET revoked = 1, updated_at = ?
		WHERE user_id = ? AND factor = ? AND revoked = 0`,
		toMillis(now), userID, factor,
	))
}

func (r *enrollmentsRepo) IncrementLockCounter(
	ctx context.Context,
	userID, factor string,
	threshold int,
	now time.Time,
) (int, error) {
	var counter int
	err := r.db.QueryRowContext(ctx, `
		UPDATE mfa_enrollments
		SET lock_counter = lock_counter + 1,
		    locked_at = CASE
		        WHEN locked_at IS NULL AND lock_counter + 1 >= ? THEN ?
		        ELSE locked_at
		    END,
		    updated_at = ?
		WHERE user_id = ? AND factor = ? AND revoked = 0
		RETURNING lock_counter`,
		threshold, toMillis(now), toMillis(now), userID, factor,
	).Scan(&counter)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return counter, nil
}

func (r *enrollmentsRepo) ResetLockCounters(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE mfa_enrollments SET lock_counter = 0, locked_at = NULL, updated_at = ?
		WHERE user_id = ? AND revoked = 0 AND (lock_counter > 0 OR locked_at IS NOT NULL)`,
		toMillis(now), userID,
	)
	return err
}

func (r *enrollmentsRepo) Unlock(ctx context.Context, userID, factor string, now time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE mfa_enrollments SET lock_counter = 0, locked_at = NULL, updated_at = ?
		WHERE user_id = ? AND factor = ? AND revoked = 0`,
		toMillis(now), userID, factor,
	))
}

func (r *enrollmentsRepo) UnlockExpired(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE mfa_enrollments SET lock_counter = 0, locked_at = NULL, updated_at = ?
		WHERE locked_at IS NOT NULL AND locked_at <= ?`,
		toMillis(now), toMillis(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *enrollmentsRepo) AdvanceLastStep(ctx context.Context, id string, step int64, now time.Time) (bool, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE mfa_enrollments SET last_step = ?, updated_at = ?
		WHERE id = ? AND revoked = 0 AND last_step < ?`,
		step, toMillis(now), id, step,
	))
}

func (r *enrollmentsRepo) TouchLastVerified(ctx context.Context, userID, factor string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE mfa_enrollments SET last_verified_at = ?, updated_at = ?
		WHERE user_id = ? AND factor = ? AND revoked = 0`,
		toMillis(now), toMillis(now), userID, factor,
	)
	return err
}
