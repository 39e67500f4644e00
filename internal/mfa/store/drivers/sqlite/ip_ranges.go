package sqlite

import (
	"context"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

type ipRangesRepo struct {
	db dbtx
}

func (r *ipRangesRepo) CreateIPRange(ctx context.Context, ipr domain.IPRange) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_ip_ranges (id, cidr, kind, description, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ipr.ID, ipr.CIDR, string(ipr.Kind), ipr.Description, boolInt(ipr.Enabled), toMillis(ipr.CreatedAt),
	)
	return mapConflict(err)
}

func (r *ipRangesRepo) ListIPRanges(ctx context.Context, enabledOnly bool) ([]domain.IPRange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cidr, kind, description, enabled, created_at
		FROM mfa_ip_ranges
		WHERE (? = 0 OR enabled = 1)
		ORDER BY created_at, id`,
		boolInt(enabledOnly),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IPRange
	for rows.Next() {
		var (
			ipr       domain.IPRange
			kind      string
			enabled   int
			createdAt int64
		)
		if err := rows.Scan(&ipr.ID, &ipr.CIDR, &kind, &ipr.Description, &enabled, &createdAt); err != nil {
			return nil, err
		}
		ipr.Kind = domain.IPRangeKind(kind)
		ipr.Enabled = enabled == 1
		ipr.CreatedAt = fromMillis(createdAt)
		out = append(out, ipr)
	}
	return out, rows.Err()
}

func (r *ipRangesRepo) DeleteIPRange(ctx context.Context, id string) error {
	return requireRow(r.db.ExecContext(ctx, `DELETE FROM mfa_ip_ranges WHERE id = ?`, id))
}
