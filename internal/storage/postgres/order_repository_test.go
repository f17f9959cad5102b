package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/testutil"
	"github.com/google/uuid"
)

func sampleOrder(sessionID int64) domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Order{
		ID:                  uuid.NewString(),
		SessionID:           sessionID,
		FirstName:           "Ada",
		LastName:            "Obi",
		Email:               "ada@example.com",
		Plan:                "Daily",
		CustomerID:          "CUS_1",
		CollectionReference: "0011223344",
		AccountBank:         "Wema Bank",
		AccountName:         "Ada Obi",
		AccountNumber:       "0011223344",
		Status:              domain.OrderStatusAwaitingPayment,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("Upsert then GetBySession round-trips", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		want := sampleOrder(42)
		if err := repo.Upsert(ctx, want); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		got, err := repo.GetBySession(ctx, 42)
		if err != nil {
			t.Fatalf("get by session: %v", err)
		}
		if got.ID != want.ID || got.FirstName != want.FirstName || got.LastName != want.LastName ||
			got.Email != want.Email || got.Plan != want.Plan || got.CustomerID != want.CustomerID ||
			got.CollectionReference != want.CollectionReference || got.AccountNumber != want.AccountNumber ||
			got.Status != want.Status {
			t.Fatalf("order mismatch:\n got %+v\nwant %+v", got, want)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("created_at mismatch: got %v want %v", got.CreatedAt, want.CreatedAt)
		}
	})

	t.Run("Upsert replaces the row for the same session", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		first := sampleOrder(42)
		if err := repo.Upsert(ctx, first); err != nil {
			t.Fatalf("first upsert: %v", err)
		}

		second := sampleOrder(42)
		second.FirstName = "Bisi"
		second.Plan = "Weekly"
		second.CollectionReference = "9988776655"
		if err := repo.Upsert(ctx, second); err != nil {
			t.Fatalf("second upsert: %v", err)
		}

		got, err := repo.GetBySession(ctx, 42)
		if err != nil {
			t.Fatalf("get by session: %v", err)
		}
		if got.FirstName != "Bisi" || got.Plan != "Weekly" || got.CollectionReference != "9988776655" {
			t.Fatalf("expected replaced order, got %+v", got)
		}

		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected one row per session, got %d", count)
		}
	})

	t.Run("GetBySession returns ErrOrderNotFound for unknown session", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if _, err := repo.GetBySession(ctx, 404); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("GetByReferenceForUpdate resolves the collection reference", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		want := sampleOrder(42)
		if err := repo.Upsert(ctx, want); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			got, err := repo.GetByReferenceForUpdate(txCtx, want.CollectionReference)
			if err != nil {
				return err
			}
			if got.SessionID != want.SessionID {
				t.Fatalf("expected session %d, got %d", want.SessionID, got.SessionID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx: %v", err)
		}

		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.GetByReferenceForUpdate(txCtx, "no-such-reference")
			return err
		})
		if !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("UpdateStatus guards on the previous status", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		order := sampleOrder(42)
		if err := repo.Upsert(ctx, order); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		at := time.Now().UTC()
		if err := repo.UpdateStatus(ctx, 42, domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid, at); err != nil {
			t.Fatalf("mark paid: %v", err)
		}

		err := repo.UpdateStatus(ctx, 42, domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid, at)
		if !errors.Is(err, domain.ErrStatusConflict) {
			t.Fatalf("expected ErrStatusConflict on repeat, got %v", err)
		}

		if err := repo.UpdateStatus(ctx, 42, domain.OrderStatusPaid, domain.OrderStatusFulfilled, at); err != nil {
			t.Fatalf("mark fulfilled: %v", err)
		}

		got, err := repo.GetBySession(ctx, 42)
		if err != nil {
			t.Fatalf("get by session: %v", err)
		}
		if got.Status != domain.OrderStatusFulfilled {
			t.Fatalf("expected fulfilled, got %s", got.Status)
		}
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		boom := errors.New("boom")
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.Upsert(txCtx, sampleOrder(42)); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		if _, err := repo.GetBySession(ctx, 42); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected rollback, got %v", err)
		}
	})
}
