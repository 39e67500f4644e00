package sqlite

import (
	"context"
	"database/sql"

	"github.com/nexosupport/nexomfa/internal/mfa/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the connection pool.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Enrollments() store.Enrollments { return &enrollmentsRepo{db: t.tx} }
func (t *txStore) BackupCodes() store.BackupCodes { return &backupCodesRepo{db: t.tx} }
func (t *txStore) OTPCodes() store.OTPCodes       { return &otpCodesRepo{db: t.tx} }
func (t *txStore) Sessions() store.Sessions       { return &sessionsRepo{db: t.tx} }
func (t *txStore) IPRanges() store.IPRanges       { return &ipRangesRepo{db: t.tx} }
func (t *txStore) Audit() store.Audit             { return &auditRepo{db: t.tx} }

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }
