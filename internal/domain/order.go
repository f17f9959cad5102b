package domain

import "time"

type OrderStatus string

const (
	OrderStatusPendingDetails   OrderStatus = "pending_details"
	OrderStatusAwaitingPayment  OrderStatus = "awaiting_payment"
	OrderStatusPaid             OrderStatus = "paid"
	OrderStatusFulfilled        OrderStatus = "fulfilled"
	OrderStatusVoucherExhausted OrderStatus = "voucher_exhausted"
)

// Order is one buyer's purchase record, keyed by chat session. Orders are
// never deleted; re-entering the intake flow replaces the row for the session.
type Order struct {
	ID        string
	SessionID int64
	FirstName string
	LastName  string
	Email     string
	Plan      string
	// CustomerID is the payment provider's customer handle.
	CustomerID string
	// CollectionReference identifies the dedicated collection account and is
	// the join key for inbound payment events.
	CollectionReference string
	AccountBank         string
	AccountName         string
	AccountNumber       string
	Status              OrderStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Terminal reports whether the order has left the payable part of its
// lifecycle. Payment events for terminal orders are duplicates.
func (o Order) Terminal() bool {
	switch o.Status {
	case OrderStatusPaid, OrderStatusFulfilled, OrderStatusVoucherExhausted:
		return true
	}
	return false
}
