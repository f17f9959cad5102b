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

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const orderColumns = `id, session_id, first_name, last_name, email, plan,
customer_id, collection_reference, account_bank, account_name, account_number,
status, created_at, updated_at`

// Upsert inserts the order or replaces the existing row for the same session.
// One order per session; audit history of abandoned runs is not kept.
func (r *OrderRepository) Upsert(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, session_id, first_name, last_name, email, plan,
	customer_id, collection_reference, account_bank, account_name,
	account_number, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (session_id) DO UPDATE SET
	id = EXCLUDED.id,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	email = EXCLUDED.email,
	plan = EXCLUDED.plan,
	customer_id = EXCLUDED.customer_id,
	collection_reference = EXCLUDED.collection_reference,
	account_bank = EXCLUDED.account_bank,
	account_name = EXCLUDED.account_name,
	account_number = EXCLUDED.account_number,
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.SessionID,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Plan,
		order.CustomerID,
		order.CollectionReference,
		order.AccountBank,
		order.AccountName,
		order.AccountNumber,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetBySession(ctx context.Context, sessionID int64) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1`
	return r.scanOrder(r.queryRow(ctx, query, sessionID), "get order by session")
}

// GetByReferenceForUpdate locks the order row matching a provider reference.
// Used inside the reconciliation transaction so duplicate deliveries for the
// same order serialize.
func (r *OrderRepository) GetByReferenceForUpdate(ctx context.Context, reference string) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE collection_reference = $1 FOR UPDATE`
	return r.scanOrder(r.queryRow(ctx, query, reference), "get order by reference")
}

func (r *OrderRepository) GetBySessionForUpdate(ctx context.Context, sessionID int64) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1 FOR UPDATE`
	return r.scanOrder(r.queryRow(ctx, query, sessionID), "get order by session")
}

// UpdateStatus transitions an order from one status to another; the previous
// status acts as a guard so transitions never move backwards.
func (r *OrderRepository) UpdateStatus(ctx context.Context, sessionID int64, from, to domain.OrderStatus, at time.Time) error {
	const stmt = `UPDATE orders SET status = $3, updated_at = $4 WHERE session_id = $1 AND status = $2`

	tag, err := r.exec(ctx, stmt, sessionID, from, to, at)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *OrderRepository) scanOrder(row pgx.Row, op string) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.SessionID,
		&o.FirstName,
		&o.LastName,
		&o.Email,
		&o.Plan,
		&o.CustomerID,
		&o.CollectionReference,
		&o.AccountBank,
		&o.AccountName,
		&o.AccountNumber,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
