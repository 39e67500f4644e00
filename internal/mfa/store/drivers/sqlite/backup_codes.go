package sqlite

import (
	"context"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

type backupCodesRepo struct {
	db dbtx
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, c domain.BackupCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_backup_codes (id, user_id, code_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		c.ID, c.UserID, c.CodeHash, toMillis(c.CreatedAt),
	)
	return mapConflict(err)
}

func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, userID, codeHash string, now time.Time) (bool, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE mfa_backup_codes SET used_at = ?
		WHERE user_id = ? AND code_hash = ? AND used_at IS NULL`,
		toMillis(now), userID, codeHash,
	))
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM mfa_backup_codes WHERE user_id = ?`, userID)
	return err
}

func (r *backupCodesRepo) CountUnusedBackupCodes(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM mfa_backup_codes WHERE user_id = ? AND used_at IS NULL`,
		userID,
	).Scan(&n)
	return n, err
}
