package domain

// PaymentEvent is the post-verification shape of an inbound provider webhook.
// Reference points at a collection account; Metadata optionally carries the
// session id and plan when the charge was created with them attached. Either
// is enough to locate the order.
type PaymentEvent struct {
	Type      string
	Status    string
	Reference string
	Metadata  PaymentMetadata
}

type PaymentMetadata struct {
	SessionID int64
	Plan      string
}

// Succeeded reports whether the event signals confirmed funds.
func (e PaymentEvent) Succeeded() bool {
	return e.Type == "charge.success" || e.Status == "success"
}
