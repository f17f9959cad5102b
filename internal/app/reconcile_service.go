package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/clock"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
	"github.com/rs/zerolog"
)

type ReconcileRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetByReferenceForUpdate(ctx context.Context, reference string) (domain.Order, error)
	GetBySessionForUpdate(ctx context.Context, sessionID int64) (domain.Order, error)
	UpdateStatus(ctx context.Context, sessionID int64, from, to domain.OrderStatus, at time.Time) error
}

type VoucherClaimer interface {
	ClaimOne(ctx context.Context, plan string, sessionID int64, at time.Time) (string, error)
}

// Notifier delivers a message to the buyer's chat. Failures are logged by the
// caller and never affect reconciliation state.
type Notifier interface {
	Notify(ctx context.Context, sessionID int64, text string) error
}

type ReconcileOutcome string

const (
	// OutcomeFulfilled means the order was paid and a voucher was claimed.
	OutcomeFulfilled ReconcileOutcome = "fulfilled"
	// OutcomeExhausted means the order was paid but the plan's pool is empty.
	OutcomeExhausted ReconcileOutcome = "exhausted"
	// OutcomeAlreadyProcessed means a duplicate delivery hit a settled order.
	OutcomeAlreadyProcessed ReconcileOutcome = "already_processed"
	// OutcomeIgnored means the event did not map to a payable order.
	OutcomeIgnored ReconcileOutcome = "ignored"
)

type ReconcileResult struct {
	Outcome ReconcileOutcome
	Order   domain.Order
	Code    string
}

// ReconcileService is the single path from "provider says paid" to "voucher
// delivered". It is safe under concurrent webhook deliveries: different orders
// proceed in parallel, the same order serializes on its row lock.
type ReconcileService struct {
	orders   ReconcileRepository
	vouchers VoucherClaimer
	notifier Notifier
	clock    clock.Clock
	log      zerolog.Logger
}

func NewReconcileService(orders ReconcileRepository, vouchers VoucherClaimer, notifier Notifier, clk clock.Clock, log zerolog.Logger) *ReconcileService {
	return &ReconcileService{
		orders:   orders,
		vouchers: vouchers,
		notifier: notifier,
		clock:    clk,
		log:      log,
	}
}

// HandlePaymentEvent reconciles one verified payment event. Unknown references
// and duplicate deliveries resolve to benign outcomes, never errors; only
// storage failures propagate.
func (s *ReconcileService) HandlePaymentEvent(ctx context.Context, ev domain.PaymentEvent) (ReconcileResult, error) {
	if !ev.Succeeded() {
		s.log.Debug().Str("type", ev.Type).Str("status", ev.Status).Msg("payment event is not a success, ignoring")
		return ReconcileResult{Outcome: OutcomeIgnored}, nil
	}

	now := s.clock.Now()
	var result ReconcileResult

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.resolveOrder(txCtx, ev)
		if err != nil {
			if errors.Is(err, domain.ErrOrderNotFound) {
				s.log.Info().Str("reference", ev.Reference).Int64("session_id", ev.Metadata.SessionID).Msg("payment event matched no order, ignoring")
				result = ReconcileResult{Outcome: OutcomeIgnored}
				return nil
			}
			return err
		}

		if order.Terminal() {
			result = ReconcileResult{Outcome: OutcomeAlreadyProcessed, Order: order}
			return nil
		}
		if order.Status != domain.OrderStatusAwaitingPayment {
			// An order that never reached awaiting_payment cannot be paid.
			s.log.Info().Int64("session_id", order.SessionID).Str("status", string(order.Status)).Msg("payment event for unpayable order, ignoring")
			result = ReconcileResult{Outcome: OutcomeIgnored, Order: order}
			return nil
		}

		if err := s.orders.UpdateStatus(txCtx, order.SessionID, domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid, now); err != nil {
			if errors.Is(err, domain.ErrStatusConflict) {
				result = ReconcileResult{Outcome: OutcomeAlreadyProcessed, Order: order}
				return nil
			}
			return err
		}
		order.Status = domain.OrderStatusPaid

		code, err := s.vouchers.ClaimOne(txCtx, order.Plan, order.SessionID, now)
		if err != nil {
			if errors.Is(err, domain.ErrNoVoucherAvailable) {
				if err := s.orders.UpdateStatus(txCtx, order.SessionID, domain.OrderStatusPaid, domain.OrderStatusVoucherExhausted, now); err != nil {
					return err
				}
				order.Status = domain.OrderStatusVoucherExhausted
				result = ReconcileResult{Outcome: OutcomeExhausted, Order: order}
				return nil
			}
			return err
		}

		if err := s.orders.UpdateStatus(txCtx, order.SessionID, domain.OrderStatusPaid, domain.OrderStatusFulfilled, now); err != nil {
			return err
		}
		order.Status = domain.OrderStatusFulfilled
		result = ReconcileResult{Outcome: OutcomeFulfilled, Order: order, Code: code}
		return nil
	})
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("reconcile payment event: %w", err)
	}

	s.notify(ctx, result)
	return result, nil
}

func (s *ReconcileService) resolveOrder(ctx context.Context, ev domain.PaymentEvent) (domain.Order, error) {
	if ev.Reference != "" {
		order, err := s.orders.GetByReferenceForUpdate(ctx, ev.Reference)
		if err == nil || !errors.Is(err, domain.ErrOrderNotFound) {
			return order, err
		}
	}
	if ev.Metadata.SessionID != 0 {
		return s.orders.GetBySessionForUpdate(ctx, ev.Metadata.SessionID)
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

// notify runs after the reconciliation transaction committed. A send failure
// is logged and dropped: the voucher stays claimed, and a redelivered event
// will see the order already settled.
func (s *ReconcileService) notify(ctx context.Context, res ReconcileResult) {
	var text string
	switch res.Outcome {
	case OutcomeFulfilled:
		text = fmt.Sprintf("Payment confirmed for %s. Here is your voucher code: %s", res.Order.Plan, res.Code)
	case OutcomeExhausted:
		text = fmt.Sprintf("Payment received for %s, but no voucher is currently available. Support has been notified.", res.Order.Plan)
		s.log.Warn().Int64("session_id", res.Order.SessionID).Str("plan", res.Order.Plan).Msg("voucher pool exhausted for paid order, restock needed")
	default:
		return
	}

	if err := s.notifier.Notify(ctx, res.Order.SessionID, text); err != nil {
		s.log.Warn().Err(err).Int64("session_id", res.Order.SessionID).Msg("failed to notify buyer")
	}
}
