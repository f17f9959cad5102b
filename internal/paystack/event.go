package paystack

import (
	"encoding/json"
	"strconv"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/domain"
)

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Status    string          `json:"status"`
		Reference string          `json:"reference"`
		Metadata  webhookMetadata `json:"metadata"`
	} `json:"data"`
}

type webhookMetadata struct {
	ChatID flexInt64 `json:"chat_id"`
	Plan   string    `json:"plan"`
}

// flexInt64 accepts a JSON number or a numeric string; Paystack metadata
// echoes back whatever type the charge was created with.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(raw []byte) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// Foreign metadata; treat as absent rather than failing the event.
			return nil
		}
		*f = flexInt64(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	*f = flexInt64(n)
	return nil
}

// ParseEvent decodes a verified webhook body into a domain payment event.
func ParseEvent(body []byte) (domain.PaymentEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.PaymentEvent{}, domain.ErrInvalidPayload
	}
	if payload.Event == "" && payload.Data.Status == "" && payload.Data.Reference == "" {
		return domain.PaymentEvent{}, domain.ErrInvalidPayload
	}

	return domain.PaymentEvent{
		Type:      payload.Event,
		Status:    payload.Data.Status,
		Reference: payload.Data.Reference,
		Metadata: domain.PaymentMetadata{
			SessionID: int64(payload.Data.Metadata.ChatID),
			Plan:      payload.Data.Metadata.Plan,
		},
	}, nil
}
