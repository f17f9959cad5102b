package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VoucherRepository struct {
	pool *pgxpool.Pool
}

func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

func (r *VoucherRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// ClaimOne atomically claims any one unused voucher for the plan and assigns
// it to the session. SKIP LOCKED keeps concurrent claimants off each other's
// rows, so two callers never see the same code.
func (r *VoucherRepository) ClaimOne(ctx context.Context, plan string, sessionID int64, at time.Time) (string, error) {
	const stmt = `
UPDATE vouchers
SET used = TRUE, assigned_to = $2, assigned_at = $3
WHERE code = (
	SELECT code FROM vouchers
	WHERE plan = $1 AND used = FALSE
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING code`

	var code string
	err := r.queryRow(ctx, stmt, plan, sessionID, at).Scan(&code)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrNoVoucherAvailable
		}
		return "", fmt.Errorf("claim voucher: %w", err)
	}
	return code, nil
}

// Merge bulk-inserts seed codes. Codes already present are left untouched, so
// reloading the same seed file is a no-op.
func (r *VoucherRepository) Merge(ctx context.Context, seed map[string][]string) (int, error) {
	const stmt = `
INSERT INTO vouchers (code, plan, used)
VALUES ($1, $2, FALSE)
ON CONFLICT (code) DO NOTHING`

	inserted := 0
	err := withTx(ctx, r.pool, func(txCtx context.Context) error {
		for plan, codes := range seed {
			for _, code := range codes {
				tag, err := r.exec(txCtx, stmt, code, plan)
				if err != nil {
					return fmt.Errorf("insert voucher %s: %w", code, err)
				}
				inserted += int(tag.RowsAffected())
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// CountRemaining reports unused voucher counts per plan, for operators.
func (r *VoucherRepository) CountRemaining(ctx context.Context) (map[string]int, error) {
	const query = `
SELECT plan, COUNT(*) FROM vouchers
WHERE used = FALSE
GROUP BY plan`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count remaining vouchers: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var plan string
		var n int
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, fmt.Errorf("scan voucher count: %w", err)
		}
		counts[plan] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voucher counts: %w", err)
	}
	return counts, nil
}

func (r *VoucherRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *VoucherRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *VoucherRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
