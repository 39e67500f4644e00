package sqlite

import (
	"context"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

type otpCodesRepo struct {
	db dbtx
}

func (r *otpCodesRepo) UpsertOTPCode(ctx context.Context, c domain.OTPCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_otp_codes (id, user_id, factor, code_hash, destination, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, factor) DO UPDATE SET
			id          = excluded.id,
			code_hash   = excluded.code_hash,
			destination = excluded.destination,
			issued_at   = excluded.issued_at,
			expires_at  = excluded.expires_at`,
		c.ID, c.UserID, c.Factor, c.CodeHash, c.Destination, toMillis(c.IssuedAt), toMillis(c.ExpiresAt),
	)
	return err
}

func (r *otpCodesRepo) GetOTPCode(ctx context.Context, userID, factor string) (domain.OTPCode, error) {
	var (
		c                   domain.OTPCode
		issuedAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, factor, code_hash, destination, issued_at, expires_at
		FROM mfa_otp_codes
		WHERE user_id = ? AND factor = ?`,
		userID, factor,
	).Scan(&c.ID, &c.UserID, &c.Factor, &c.CodeHash, &c.Destination, &issuedAt, &expiresAt)
	if err != nil {
		return domain.OTPCode{}, mapNotFound(err)
	}
	c.IssuedAt = fromMillis(issuedAt)
	c.ExpiresAt = fromMillis(expiresAt)
	return c, nil
}

func (r *otpCodesRepo) ConsumeOTPCode(ctx context.Context, id string) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM mfa_otp_codes WHERE id = ?`, id))
}

func (r *otpCodesRepo) DeleteUserOTPCodes(ctx context.Context, userID, factor string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM mfa_otp_codes WHERE user_id = ? AND factor = ?`,
		userID, factor,
	)
	return err
}

func (r *otpCodesRepo) DeleteExpiredOTPCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mfa_otp_codes WHERE expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
